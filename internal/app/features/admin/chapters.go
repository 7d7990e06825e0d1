package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/formutil"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/navigation"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (h *Handler) chapterForm(r *http.Request, title string, in chapterInput, color, icon string) chapterFormData {
	data := chapterFormData{
		ItemTitle:   in.Title,
		Description: in.Description,
		Color:       color,
		Icon:        icon,
		Colors:      stringOptions(models.ChapterColors, color, nil),
		Icons:       stringOptions(models.ChapterIcons, icon, nil),
	}
	formutil.SetBase(&data.Base, r, title, navigation.AdminTab(TabChapters))
	return data
}

func readChapterForm(r *http.Request) (chapterInput, string, string) {
	in := chapterInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	color := pick(r.FormValue("color"), models.ChapterColors, models.DefaultChapterColor)
	icon := pick(r.FormValue("icon"), models.ChapterIcons, models.DefaultChapterIcon)
	return in, color, icon
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/chapters/new · POST /admin/chapters                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChapterNew(w http.ResponseWriter, r *http.Request) {
	data := h.chapterForm(r, "Nouveau chapitre", chapterInput{}, models.DefaultChapterColor, models.DefaultChapterIcon)
	templates.Render(w, r, "admin_chapter_form", data)
}

func (h *Handler) HandleChapterCreate(w http.ResponseWriter, r *http.Request) {
	if !h.parseContentForm(w, r) {
		return
	}
	in, color, icon := readChapterForm(r)

	renderWithError := func(msg string) {
		data := h.chapterForm(r, "Nouveau chapitre", in, color, icon)
		data.SetError(msg)
		templates.Render(w, r, "admin_chapter_form", data)
	}

	if err := inputval.Struct(in); err != nil {
		renderWithError(err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create chapter")
	defer cancel()

	ch, err := h.Chapters.Create(ctx, models.Chapter{
		Title:       in.Title,
		Description: in.Description,
		Color:       color,
		Icon:        icon,
	})
	if err != nil {
		if errors.Is(err, chapterstore.ErrTitleRequired) {
			renderWithError(MsgTitleRequired)
			return
		}
		h.Log.Error("create chapter failed", zap.String("title", in.Title), zap.Error(err))
		renderWithError(MsgSaveFailed)
		return
	}

	h.contentChanged(r, ch.ID, auditlog.ResourceChapter, auditlog.ActionCreated, ch.Title)
	h.success(w, r, TabChapters, MsgChapterCreated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/chapters/{id}/edit · POST /admin/chapters/{id}                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChapterEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load chapter")
	defer cancel()

	ch, err := h.Chapters.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load chapter failed", zap.String("chapter_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	data := h.chapterForm(r, "Modifier le chapitre",
		chapterInput{Title: ch.Title, Description: ch.Description},
		pick(ch.Color, models.ChapterColors, models.DefaultChapterColor),
		pick(ch.Icon, models.ChapterIcons, models.DefaultChapterIcon))
	data.IsEdit = true
	data.ID = id.Hex()
	templates.Render(w, r, "admin_chapter_form", data)
}

func (h *Handler) HandleChapterUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}
	if !h.parseContentForm(w, r) {
		return
	}
	in, color, icon := readChapterForm(r)

	renderWithError := func(msg string) {
		data := h.chapterForm(r, "Modifier le chapitre", in, color, icon)
		data.IsEdit = true
		data.ID = id.Hex()
		data.SetError(msg)
		templates.Render(w, r, "admin_chapter_form", data)
	}

	if err := inputval.Struct(in); err != nil {
		renderWithError(err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update chapter")
	defer cancel()

	err := h.Chapters.Update(ctx, id, chapterstore.Update{
		Title:       in.Title,
		Description: in.Description,
		Color:       color,
		Icon:        icon,
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	case errors.Is(err, chapterstore.ErrTitleRequired):
		renderWithError(MsgTitleRequired)
		return
	case err != nil:
		h.Log.Error("update chapter failed", zap.String("chapter_id", id.Hex()), zap.Error(err))
		renderWithError(MsgSaveFailed)
		return
	}

	h.contentChanged(r, id, auditlog.ResourceChapter, auditlog.ActionUpdated, in.Title)
	h.success(w, r, TabChapters, MsgChapterUpdated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/chapters/{id}/delete · POST /admin/chapters/{id}/delete           |
| Deleting a chapter also deletes its lessons and their exercises.             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChapterDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load chapter")
	defer cancel()

	ch, err := h.Chapters.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load chapter failed", zap.String("chapter_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	data := confirmDeleteData{
		BaseVM: viewdata.NewBaseVM(w, r, nil, "Supprimer le chapitre", navigation.AdminTab(TabChapters)),
		Kind:   "le chapitre",
		Name:   ch.Title,
		Action: "/admin/chapters/" + id.Hex() + "/delete",
	}
	if n, err := h.Lessons.CountByChapter(ctx, id); err == nil && n > 0 {
		data.Warning = fmt.Sprintf("Les %d leçon(s) de ce chapitre et leurs exercices seront également supprimés.", n)
	}
	templates.Render(w, r, "admin_confirm_delete", data)
}

func (h *Handler) HandleChapterDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete chapter")
	defer cancel()

	ch, err := h.Chapters.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load chapter failed", zap.String("chapter_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	n, err := h.Chapters.Delete(ctx, id)
	if err != nil {
		h.Log.Error("delete chapter failed", zap.String("chapter_id", id.Hex()), zap.Int64("deleted", n), zap.Error(err))
		if n == 0 {
			h.failure(w, r, TabChapters, MsgDeleteFailed)
			return
		}
		// Deleted but not renumbered; the next delete compacts again.
	}
	if n == 0 {
		h.failure(w, r, TabChapters, MsgChapterNotFound)
		return
	}

	h.contentChanged(r, id, auditlog.ResourceChapter, auditlog.ActionDeleted, ch.Title)
	h.success(w, r, TabChapters, MsgChapterDeleted)
}

package admin

import (
	"errors"
	"net/http"
	"strings"

	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/formutil"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/navigation"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (h *Handler) lessonForm(r *http.Request, title string, in lessonInput) lessonFormData {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "lesson form options")
	defer cancel()

	data := lessonFormData{
		ItemTitle: in.Title,
		Content:   in.Content,
		ChapterID: in.ChapterID,
		Chapters:  h.chapterOptions(ctx, in.ChapterID),
	}
	formutil.SetBase(&data.Base, r, title, navigation.AdminTab(TabLessons))
	return data
}

func readLessonForm(r *http.Request) lessonInput {
	return lessonInput{
		Title:     strings.TrimSpace(r.FormValue("title")),
		Content:   r.FormValue("content"),
		ChapterID: strings.TrimSpace(r.FormValue("chapter_id")),
	}
}

// lessonErrorMessage maps a store validation error to a form message.
// ok is false for unexpected errors.
func lessonErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, lessonstore.ErrTitleRequired):
		return MsgTitleRequired, true
	case errors.Is(err, lessonstore.ErrChapterRequired):
		return MsgChapterRequired, true
	case errors.Is(err, lessonstore.ErrChapterNotFound):
		return MsgChapterNotFound, true
	}
	return MsgSaveFailed, false
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/lessons/new[?chapter=id] · POST /admin/lessons                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLessonNew(w http.ResponseWriter, r *http.Request) {
	data := h.lessonForm(r, "Nouvelle leçon", lessonInput{ChapterID: query.Get(r, "chapter")})
	templates.Render(w, r, "admin_lesson_form", data)
}

func (h *Handler) HandleLessonCreate(w http.ResponseWriter, r *http.Request) {
	if !h.parseContentForm(w, r) {
		return
	}
	in := readLessonForm(r)

	renderWithError := func(msg string) {
		data := h.lessonForm(r, "Nouvelle leçon", in)
		data.SetError(msg)
		templates.Render(w, r, "admin_lesson_form", data)
	}

	if err := inputval.Struct(in); err != nil {
		renderWithError(err.Error())
		return
	}
	chapterID, err := primitive.ObjectIDFromHex(in.ChapterID)
	if err != nil {
		renderWithError(MsgChapterRequired)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create lesson")
	defer cancel()

	l, err := h.Lessons.Create(ctx, models.Lesson{
		Title:     in.Title,
		Content:   in.Content,
		ChapterID: chapterID,
	})
	if err != nil {
		msg, known := lessonErrorMessage(err)
		if !known {
			h.Log.Error("create lesson failed", zap.String("title", in.Title), zap.Error(err))
		}
		renderWithError(msg)
		return
	}

	h.contentChanged(r, l.ID, auditlog.ResourceLesson, auditlog.ActionCreated, l.Title)
	h.success(w, r, TabLessons, MsgLessonCreated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/lessons/{id}/edit · POST /admin/lessons/{id}                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLessonEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load lesson")
	defer cancel()

	l, err := h.Lessons.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load lesson failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	data := h.lessonForm(r, "Modifier la leçon", lessonInput{
		Title:     l.Title,
		Content:   l.Content,
		ChapterID: l.ChapterID.Hex(),
	})
	data.IsEdit = true
	data.ID = id.Hex()
	templates.Render(w, r, "admin_lesson_form", data)
}

func (h *Handler) HandleLessonUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}
	if !h.parseContentForm(w, r) {
		return
	}
	in := readLessonForm(r)

	renderWithError := func(msg string) {
		data := h.lessonForm(r, "Modifier la leçon", in)
		data.IsEdit = true
		data.ID = id.Hex()
		data.SetError(msg)
		templates.Render(w, r, "admin_lesson_form", data)
	}

	if err := inputval.Struct(in); err != nil {
		renderWithError(err.Error())
		return
	}
	chapterID, err := primitive.ObjectIDFromHex(in.ChapterID)
	if err != nil {
		renderWithError(MsgChapterRequired)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update lesson")
	defer cancel()

	err = h.Lessons.Update(ctx, id, lessonstore.Update{
		Title:     in.Title,
		Content:   in.Content,
		ChapterID: chapterID,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}
	if err != nil {
		msg, known := lessonErrorMessage(err)
		if !known {
			h.Log.Error("update lesson failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		}
		renderWithError(msg)
		return
	}

	h.contentChanged(r, id, auditlog.ResourceLesson, auditlog.ActionUpdated, in.Title)
	h.success(w, r, TabLessons, MsgLessonUpdated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/lessons/{id}/delete · POST /admin/lessons/{id}/delete             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLessonDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load lesson")
	defer cancel()

	l, err := h.Lessons.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load lesson failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	data := confirmDeleteData{
		BaseVM: viewdata.NewBaseVM(w, r, nil, "Supprimer la leçon", navigation.AdminTab(TabLessons)),
		Kind:   "la leçon",
		Name:   l.Title,
		Action: "/admin/lessons/" + id.Hex() + "/delete",
	}
	if es, err := h.Exercises.ListByLesson(ctx, id); err == nil && len(es) > 0 {
		data.Warning = "Les exercices de cette leçon seront également supprimés."
	}
	templates.Render(w, r, "admin_confirm_delete", data)
}

func (h *Handler) HandleLessonDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete lesson")
	defer cancel()

	l, err := h.Lessons.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load lesson failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	n, err := h.Lessons.Delete(ctx, id)
	if err != nil {
		h.Log.Error("delete lesson failed", zap.String("lesson_id", id.Hex()), zap.Int64("deleted", n), zap.Error(err))
		if n == 0 {
			h.failure(w, r, TabLessons, MsgDeleteFailed)
			return
		}
	}
	if n == 0 {
		h.failure(w, r, TabLessons, MsgLessonNotFound)
		return
	}

	h.contentChanged(r, id, auditlog.ResourceLesson, auditlog.ActionDeleted, l.Title)
	h.success(w, r, TabLessons, MsgLessonDeleted)
}

package dashboard

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/system/mathtext"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errNotFound = errors.New("not found")

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                               |
| GET /dashboard/chapters/{id}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(w, r, h.Flashes, "Tableau de bord", "/")
	data, _ := h.buildIndex(r.Context(), base, primitive.NilObjectID)
	templates.Render(w, r, "dashboard", data)
}

func (h *Handler) ServeChapter(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, MsgChapterNotFound, "/dashboard")
		return
	}

	base := viewdata.NewBaseVM(w, r, h.Flashes, "Tableau de bord", "/dashboard")
	data, err := h.buildIndex(r.Context(), base, id)
	if errors.Is(err, errNotFound) {
		uierrors.RenderNotFound(w, r, MsgChapterNotFound, "/dashboard")
		return
	}
	templates.Render(w, r, "dashboard", data)
}

// buildIndex loads the chapter list and, when selected is set, the lessons
// of that chapter. Load failures become page notices; only an unknown
// chapter is returned as an error.
func (h *Handler) buildIndex(ctx context.Context, base viewdata.BaseVM, selected primitive.ObjectID) (indexData, error) {
	data := indexData{BaseVM: base}

	listCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "dashboard chapters")
	defer cancel()

	sel := ""
	if !selected.IsZero() {
		sel = selected.Hex()
	}

	chs, err := h.Chapters.List(listCtx)
	if err != nil {
		h.Log.Error("load chapters failed", zap.Error(err))
		data.AddError(MsgChaptersLoadFailed)
	}
	data.Chapters = toChapterItems(chs, sel)

	if selected.IsZero() {
		return data, nil
	}

	for i := range data.Chapters {
		if data.Chapters[i].Selected {
			data.Selected = &data.Chapters[i]
			break
		}
	}
	if data.Selected == nil {
		// The list failed or the chapter was created after it was read.
		ch, err := h.Chapters.GetByID(listCtx, selected)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return data, errNotFound
		}
		if err != nil {
			h.Log.Error("load chapter failed", zap.String("chapter_id", sel), zap.Error(err))
		} else {
			item := toChapterItems([]models.Chapter{ch}, sel)[0]
			data.Selected = &item
		}
	}
	if data.Selected != nil {
		data.Title = data.Selected.Title
	}

	ls, err := h.Lessons.ListByChapter(listCtx, selected)
	if err != nil {
		h.Log.Error("load lessons failed", zap.String("chapter_id", sel), zap.Error(err))
		data.AddError(MsgLessonsLoadFailed)
	}
	data.Lessons = toLessonItems(ls)
	return data, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/lessons/{id}                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLesson(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, MsgLessonNotFound, "/dashboard")
		return
	}

	base := viewdata.NewBaseVM(w, r, h.Flashes, "Leçon", "/dashboard")
	data, err := h.buildLesson(r.Context(), base, id)
	switch {
	case errors.Is(err, errNotFound):
		uierrors.RenderNotFound(w, r, MsgLessonNotFound, "/dashboard")
		return
	case err != nil:
		h.Log.Error("load lesson failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		uierrors.RenderNotFound(w, r, MsgLessonsLoadFailed, "/dashboard")
		return
	}
	templates.Render(w, r, "dashboard_lesson", data)
}

func (h *Handler) buildLesson(ctx context.Context, base viewdata.BaseVM, id primitive.ObjectID) (lessonData, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "dashboard lesson")
	defer cancel()

	l, err := h.Lessons.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return lessonData{}, errNotFound
	}
	if err != nil {
		return lessonData{}, err
	}

	data := lessonData{
		BaseVM:      base,
		ChapterID:   l.ChapterID.Hex(),
		LessonTitle: l.Title,
		Content:     mathtext.Render(l.Content),
	}
	data.Title = l.Title
	data.BackURL = "/dashboard/chapters/" + data.ChapterID

	if ch, err := h.Chapters.GetByID(ctx, l.ChapterID); err == nil {
		data.ChapterTitle = ch.Title
	} else {
		h.Log.Warn("load lesson chapter failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
	}

	es, err := h.Exercises.ListByLesson(ctx, id)
	if err != nil {
		h.Log.Error("load exercises failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		data.AddError(MsgExercisesLoadFailed)
	}
	data.Exercises = toExerciseItems(es)
	return data, nil
}

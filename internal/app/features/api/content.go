package api

import (
	"errors"
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/mathtext"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func objectID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// ServeChapters lists every chapter in display order.
func (h *Handler) ServeChapters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api list chapters")
	defer cancel()

	chapters, err := h.Chapters.List(ctx)
	if err != nil {
		h.Log.Error("api list chapters failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgLoadFailed)
		return
	}
	out := make([]chapterJSON, 0, len(chapters))
	for _, c := range chapters {
		out = append(out, toChapterJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// ServeChapterLessons lists the lessons of one chapter.
func (h *Handler) ServeChapterLessons(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api list lessons")
	defer cancel()

	if _, err := h.Chapters.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, MsgNotFound)
			return
		}
		h.Log.Error("api load chapter failed", zap.String("chapter_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgLoadFailed)
		return
	}

	lessons, err := h.Lessons.ListByChapter(ctx, id)
	if err != nil {
		h.Log.Error("api list lessons failed", zap.String("chapter_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgLoadFailed)
		return
	}
	out := make([]lessonJSON, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, toLessonJSON(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// ServeLesson returns one lesson with its exercises.
func (h *Handler) ServeLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api load lesson")
	defer cancel()

	lesson, err := h.Lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, MsgNotFound)
			return
		}
		h.Log.Error("api load lesson failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgLoadFailed)
		return
	}

	exercises, err := h.Exercises.ListByLesson(ctx, id)
	if err != nil {
		h.Log.Error("api list exercises failed", zap.String("lesson_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgLoadFailed)
		return
	}

	out := lessonDetailJSON{
		lessonJSON:  toLessonJSON(lesson),
		ContentHTML: string(mathtext.Render(lesson.Content)),
		Exercises:   make([]exerciseJSON, 0, len(exercises)),
	}
	for _, e := range exercises {
		out.Exercises = append(out.Exercises, toExerciseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

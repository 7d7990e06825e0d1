package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/navigation"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.uber.org/zap"
)

// chapterInput defines validation rules for the chapter form.
type chapterInput struct {
	Title       string `form:"title" validate:"notblank,max=200"`
	Description string `form:"description" validate:"max=1000"`
}

// lessonInput defines validation rules for the lesson form.
type lessonInput struct {
	Title     string `form:"title" validate:"notblank,max=200"`
	Content   string `form:"content" validate:"max=100000"`
	ChapterID string `form:"chapter_id" validate:"required"`
}

// exerciseInput defines validation rules for the exercise form.
type exerciseInput struct {
	Title      string `form:"title" validate:"notblank,max=200"`
	Problem    string `form:"problem" validate:"notblank,max=50000"`
	Solution   string `form:"solution" validate:"max=50000"`
	Difficulty string `form:"difficulty" validate:"difficulty"`
	LessonID   string `form:"lesson_id" validate:"required"`
}

// parseContentForm bounds and parses a content form body.
func (h *Handler) parseContentForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxContentFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Formulaire invalide.", err)
		return false
	}
	return true
}

// done flashes msg and returns to a safe "return" URL under /admin, or to
// the given tab of the overview.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, tab, kind, msg string) {
	h.notify(w, r, kind, msg)
	opts := navigation.AdminBackURL
	opts.Fallback = navigation.AdminTab(tab)
	http.Redirect(w, r, navigation.SafeBackURL(r, opts), http.StatusSeeOther)
}

func (h *Handler) success(w http.ResponseWriter, r *http.Request, tab, msg string) {
	h.done(w, r, tab, auth.FlashSuccess, msg)
}

func (h *Handler) failure(w http.ResponseWriter, r *http.Request, tab, msg string) {
	h.done(w, r, tab, auth.FlashError, msg)
}

// pick returns v when it is one of allowed, else def.
func pick(v string, allowed []string, def string) string {
	for _, a := range allowed {
		if a == v {
			return v
		}
	}
	return def
}

func stringOptions(values []string, selected string, label func(string) string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		l := v
		if label != nil {
			l = label(v)
		}
		out = append(out, option{Value: v, Label: l, Selected: v == selected})
	}
	return out
}

// chapterOptions lists chapters for the lesson form. A load failure yields
// an empty list; the form then cannot be submitted with a chapter.
func (h *Handler) chapterOptions(ctx context.Context, selected string) []option {
	chs, err := h.Chapters.List(ctx)
	if err != nil {
		h.Log.Error("admin: load chapter options failed", zap.Error(err))
		return nil
	}
	out := make([]option, 0, len(chs))
	for _, c := range chs {
		id := c.ID.Hex()
		out = append(out, option{Value: id, Label: c.Title, Selected: id == selected})
	}
	return out
}

// lessonOptions lists lessons for the exercise form, labelled with their
// chapter.
func (h *Handler) lessonOptions(ctx context.Context, selected string) []option {
	chs, err := h.Chapters.List(ctx)
	if err != nil {
		h.Log.Error("admin: load chapter options failed", zap.Error(err))
		return nil
	}
	ls, err := h.Lessons.List(ctx)
	if err != nil {
		h.Log.Error("admin: load lesson options failed", zap.Error(err))
		return nil
	}

	// Lessons are listed in chapter order, each chapter's in order_index.
	byChapter := make(map[string][]models.Lesson)
	for _, l := range ls {
		byChapter[l.ChapterID.Hex()] = append(byChapter[l.ChapterID.Hex()], l)
	}
	var out []option
	for _, c := range chs {
		for _, l := range byChapter[c.ID.Hex()] {
			id := l.ID.Hex()
			out = append(out, option{
				Value:    id,
				Label:    c.Title + " › " + l.Title,
				Selected: id == selected,
			})
		}
	}
	return out
}

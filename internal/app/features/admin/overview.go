package admin

import (
	"context"
	"net/http"
	"sync"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/mathtext"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const excerptLen = 100

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin?tab=chapters|lessons|exercises|users                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(w, r, h.SessionMgr, "Administration", "/dashboard")
	data := h.buildOverview(r.Context(), base, query.Get(r, "tab"), selfFromRequest(r))
	templates.Render(w, r, "admin_overview", data)
}

// lists is the result of the four concurrent list queries.
type lists struct {
	chapters  []models.Chapter
	lessons   []models.Lesson
	exercises []models.Exercise
	users     []models.ManagedUser

	chaptersErr, lessonsErr, exercisesErr, usersErr error
}

// loadLists runs the four list queries concurrently and waits for all of
// them. Each failure is kept separately so the others still render.
func (h *Handler) loadLists(ctx context.Context) lists {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "admin overview")
	defer cancel()

	var (
		out lists
		wg  sync.WaitGroup
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		out.chapters, out.chaptersErr = h.Chapters.List(ctx)
	}()
	go func() {
		defer wg.Done()
		out.lessons, out.lessonsErr = h.Lessons.List(ctx)
	}()
	go func() {
		defer wg.Done()
		out.exercises, out.exercisesErr = h.Exercises.List(ctx)
	}()
	go func() {
		defer wg.Done()
		out.users, out.usersErr = h.Users.ListManaged(ctx)
	}()
	wg.Wait()
	return out
}

// buildOverview assembles the four tabs. selfID is the signed-in admin, whose
// row carries no role controls.
func (h *Handler) buildOverview(ctx context.Context, base viewdata.BaseVM, tab, selfID string) overviewData {
	data := overviewData{BaseVM: base, Tab: normalizeTab(tab)}
	l := h.loadLists(ctx)

	if l.chaptersErr != nil {
		h.Log.Error("admin: load chapters failed", zap.Error(l.chaptersErr))
		l.chapters = nil
	}
	if l.lessonsErr != nil {
		h.Log.Error("admin: load lessons failed", zap.Error(l.lessonsErr))
		l.lessons = nil
	}
	if l.exercisesErr != nil {
		h.Log.Error("admin: load exercises failed", zap.Error(l.exercisesErr))
		l.exercises = nil
	}
	if l.usersErr != nil {
		h.Log.Error("admin: load users failed", zap.Error(l.usersErr))
		l.users = nil
		data.AddError(MsgUsersLoadFailed)
	}

	chapterTitles := make(map[string]string, len(l.chapters))
	for _, c := range l.chapters {
		chapterTitles[c.ID.Hex()] = c.Title
	}
	lessonTitles := make(map[string]string, len(l.lessons))
	lessonCounts := make(map[string]int)
	for _, ls := range l.lessons {
		lessonTitles[ls.ID.Hex()] = ls.Title
		lessonCounts[ls.ChapterID.Hex()]++
	}

	for _, c := range l.chapters {
		id := c.ID.Hex()
		data.Chapters = append(data.Chapters, chapterRow{
			ID:          id,
			Title:       c.Title,
			Description: c.Description,
			Color:       c.Color,
			Icon:        c.Icon,
			OrderIndex:  c.OrderIndex,
			LessonCount: lessonCounts[id],
		})
	}
	for _, ls := range l.lessons {
		data.Lessons = append(data.Lessons, lessonRow{
			ID:           ls.ID.Hex(),
			Title:        ls.Title,
			ChapterID:    ls.ChapterID.Hex(),
			ChapterTitle: chapterTitles[ls.ChapterID.Hex()],
			OrderIndex:   ls.OrderIndex,
			Excerpt:      mathtext.Plain(ls.Content, excerptLen),
		})
	}
	for _, e := range l.exercises {
		data.Exercises = append(data.Exercises, exerciseRow{
			ID:              e.ID.Hex(),
			Title:           e.Title,
			LessonID:        e.LessonID.Hex(),
			LessonTitle:     lessonTitles[e.LessonID.Hex()],
			Difficulty:      e.Difficulty,
			DifficultyLabel: models.DifficultyLabel(e.Difficulty),
			OrderIndex:      e.OrderIndex,
		})
	}

	for _, u := range l.users {
		id := u.ID.Hex()
		data.Users = append(data.Users, userRow{
			ID:         id,
			Email:      u.Email,
			Name:       u.DisplayName(),
			Role:       models.NormalizeRole(u.Role),
			IsAdmin:    models.NormalizeRole(u.Role) == models.RoleAdmin,
			IsSelf:     id == selfID,
			Confirmed:  u.EmailConfirmedAt != nil,
			LastSignIn: u.LastSignInAt,
			CreatedAt:  u.CreatedAt,
		})
	}

	data.Tabs = make([]tabItem, len(Tabs))
	copy(data.Tabs, Tabs)
	for i := range data.Tabs {
		switch data.Tabs[i].ID {
		case TabChapters:
			data.Tabs[i].Count = len(data.Chapters)
		case TabLessons:
			data.Tabs[i].Count = len(data.Lessons)
		case TabExercises:
			data.Tabs[i].Count = len(data.Exercises)
		case TabUsers:
			data.Tabs[i].Count = len(data.Users)
		}
	}
	return data
}

// selfFromRequest returns the signed-in admin's id, or "".
func selfFromRequest(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.ID
	}
	return ""
}

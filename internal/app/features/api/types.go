package api

import (
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/mathtext"
	"github.com/dalemusser/mathmastery/internal/domain/models"
)

type userJSON struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
	Confirmed bool   `json:"confirmed"`
}

func fromSessionUser(u *auth.SessionUser) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.DisplayName(),
		Role:      u.Role,
		IsAdmin:   u.IsAdmin(),
		Confirmed: u.Confirmed,
	}
}

func fromUser(u *models.User) userJSON {
	name := u.Metadata.FirstName
	if u.Metadata.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.Metadata.LastName
	}
	if name == "" {
		name = u.Email
	}
	return userJSON{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Name:      name,
		Role:      models.NormalizeRole(u.Role),
		IsAdmin:   u.IsAdmin(),
		Confirmed: u.IsConfirmed(),
	}
}

type tokenJSON struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userJSON  `json:"user"`
}

type signUpJSON struct {
	User    userJSON   `json:"user"`
	Message string     `json:"message"`
	Token   *tokenJSON `json:"token,omitempty"`
}

type chapterJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	OrderIndex  int    `json:"order_index"`
}

func toChapterJSON(c models.Chapter) chapterJSON {
	return chapterJSON{
		ID:          c.ID.Hex(),
		Title:       c.Title,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		OrderIndex:  c.OrderIndex,
	}
}

type lessonJSON struct {
	ID         string `json:"id"`
	ChapterID  string `json:"chapter_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

func toLessonJSON(l models.Lesson) lessonJSON {
	return lessonJSON{
		ID:         l.ID.Hex(),
		ChapterID:  l.ChapterID.Hex(),
		Title:      l.Title,
		Content:    l.Content,
		OrderIndex: l.OrderIndex,
	}
}

// exerciseJSON carries the raw markup and its rendered HTML so clients
// without a Markdown renderer can display it.
type exerciseJSON struct {
	ID           string `json:"id"`
	LessonID     string `json:"lesson_id"`
	Title        string `json:"title"`
	Problem      string `json:"problem"`
	ProblemHTML  string `json:"problem_html"`
	Solution     string `json:"solution"`
	SolutionHTML string `json:"solution_html"`
	Difficulty   string `json:"difficulty"`
	OrderIndex   int    `json:"order_index"`
}

func toExerciseJSON(e models.Exercise) exerciseJSON {
	return exerciseJSON{
		ID:           e.ID.Hex(),
		LessonID:     e.LessonID.Hex(),
		Title:        e.Title,
		Problem:      e.Problem,
		ProblemHTML:  string(mathtext.Render(e.Problem)),
		Solution:     e.Solution,
		SolutionHTML: string(mathtext.Render(e.Solution)),
		Difficulty:   e.Difficulty,
		OrderIndex:   e.OrderIndex,
	}
}

type lessonDetailJSON struct {
	lessonJSON
	ContentHTML string         `json:"content_html"`
	Exercises   []exerciseJSON `json:"exercises"`
}

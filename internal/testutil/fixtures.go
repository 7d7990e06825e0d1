package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"github.com/dalemusser/mathmastery/internal/app/system/authutil"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultPassword is the password of every user created by Fixtures.
const DefaultPassword = "secret42"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a confirmed password user with DefaultPassword.
func (f *Fixtures) CreateUser(ctx context.Context, email, role string) models.User {
	f.t.Helper()
	hash, err := authutil.HashPassword(DefaultPassword)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u, err := userstore.New(f.db).Create(ctx, models.User{
		Email:            email,
		PasswordHash:     hash,
		Role:             role,
		EmailConfirmedAt: &now,
	})
	if err != nil {
		f.t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateStudent creates a confirmed student.
func (f *Fixtures) CreateStudent(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, email, models.RoleStudent)
}

// CreateAdmin creates a confirmed admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, email, models.RoleAdmin)
}

// CreateChapter appends a chapter.
func (f *Fixtures) CreateChapter(ctx context.Context, title string) models.Chapter {
	f.t.Helper()
	ch, err := chapterstore.New(f.db).Create(ctx, models.Chapter{Title: title, Description: title + " (description)"})
	if err != nil {
		f.t.Fatalf("create chapter %q: %v", title, err)
	}
	return ch
}

// CreateLesson appends a lesson to chapterID.
func (f *Fixtures) CreateLesson(ctx context.Context, chapterID primitive.ObjectID, title string) models.Lesson {
	f.t.Helper()
	l, err := lessonstore.New(f.db).Create(ctx, models.Lesson{
		ChapterID: chapterID,
		Title:     title,
		Content:   "Soit $f(x) = x^2$.",
	})
	if err != nil {
		f.t.Fatalf("create lesson %q: %v", title, err)
	}
	return l
}

// CreateExercise appends a medium exercise to lessonID.
func (f *Fixtures) CreateExercise(ctx context.Context, lessonID primitive.ObjectID, title string) models.Exercise {
	f.t.Helper()
	e, err := exercisestore.New(f.db).Create(ctx, models.Exercise{
		LessonID:   lessonID,
		Title:      title,
		Problem:    "Calculer $\\lim_{x \\to 0} \\frac{\\sin x}{x}$.",
		Solution:   "$$1$$",
		Difficulty: models.DifficultyMedium,
	})
	if err != nil {
		f.t.Fatalf("create exercise %q: %v", title, err)
	}
	return e
}

// internal/app/features/api/handler.go
package api

import (
	"context"

	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/tokens"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Accounts is the part of account.Service the API uses.
type Accounts interface {
	SignUp(ctx context.Context, in account.SignUpInput, meta account.RequestMeta) (*models.User, error)
	SignIn(ctx context.Context, email, password string, meta account.RequestMeta) (*models.User, error)
	auth.UserFetcher
}

// ChapterSource is the read side of the chapters store.
type ChapterSource interface {
	List(ctx context.Context) ([]models.Chapter, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Chapter, error)
}

// LessonSource is the read side of the lessons store.
type LessonSource interface {
	ListByChapter(ctx context.Context, chapterID primitive.ObjectID) ([]models.Lesson, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Lesson, error)
}

// ExerciseSource is the read side of the exercises store.
type ExerciseSource interface {
	ListByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]models.Exercise, error)
}

// Handler serves the JSON API under /api.
type Handler struct {
	Accounts  Accounts
	Chapters  ChapterSource
	Lessons   LessonSource
	Exercises ExerciseSource
	Tokens    *tokens.Issuer
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, accounts Accounts, issuer *tokens.Issuer, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:  accounts,
		Chapters:  chapterstore.New(db),
		Lessons:   lessonstore.New(db),
		Exercises: exercisestore.New(db),
		Tokens:    issuer,
		Log:       logger,
	}
}

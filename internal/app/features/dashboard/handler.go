// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"

	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Notices shown when a list cannot be loaded. The page still renders with
// an empty list.
const (
	MsgChaptersLoadFailed  = "Erreur lors du chargement des chapitres"
	MsgLessonsLoadFailed   = "Erreur lors du chargement des leçons"
	MsgExercisesLoadFailed = "Erreur lors du chargement des exercices"
	MsgChapterNotFound     = "Ce chapitre est introuvable."
	MsgLessonNotFound      = "Cette leçon est introuvable."
)

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

// Handler serves the read-only student dashboard.
type Handler struct {
	Chapters  ChapterSource
	Lessons   LessonSource
	Exercises ExerciseSource
	Flashes   viewdata.FlashSource
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, flashes viewdata.FlashSource, logger *zap.Logger) *Handler {
	return &Handler{
		Chapters:  chapterstore.New(db),
		Lessons:   lessonstore.New(db),
		Exercises: exercisestore.New(db),
		Flashes:   flashes,
		Log:       logger,
	}
}

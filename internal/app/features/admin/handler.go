// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/metrics"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ChapterStore is the part of the chapters store the admin panel uses.
type ChapterStore interface {
	List(ctx context.Context) ([]models.Chapter, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Chapter, error)
	Create(ctx context.Context, ch models.Chapter) (models.Chapter, error)
	Update(ctx context.Context, id primitive.ObjectID, upd chapterstore.Update) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// LessonStore is the part of the lessons store the admin panel uses.
type LessonStore interface {
	List(ctx context.Context) ([]models.Lesson, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Lesson, error)
	CountByChapter(ctx context.Context, chapterID primitive.ObjectID) (int64, error)
	Create(ctx context.Context, l models.Lesson) (models.Lesson, error)
	Update(ctx context.Context, id primitive.ObjectID, upd lessonstore.Update) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// ExerciseStore is the part of the exercises store the admin panel uses.
type ExerciseStore interface {
	List(ctx context.Context) ([]models.Exercise, error)
	ListByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]models.Exercise, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Exercise, error)
	Create(ctx context.Context, e models.Exercise) (models.Exercise, error)
	Update(ctx context.Context, id primitive.ObjectID, upd exercisestore.Update) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// UserLister lists accounts for the users tab.
type UserLister interface {
	ListManaged(ctx context.Context) ([]models.ManagedUser, error)
}

// RoleSetter changes a user's role. account.Service implements it.
type RoleSetter interface {
	SetRoleByEmail(ctx context.Context, actorID primitive.ObjectID, actorEmail, email, role string, meta account.RequestMeta) (*models.User, error)
}

// Handler serves the admin panel. Every route is behind RequireAdmin.
type Handler struct {
	Chapters   ChapterStore
	Lessons    LessonStore
	Exercises  ExerciseStore
	Users      UserLister
	Roles      RoleSetter
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Metrics    *metrics.Metrics
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	roles RoleSetter,
	sm *auth.SessionManager,
	audit *auditlog.Logger,
	m *metrics.Metrics,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Chapters:   chapterstore.New(db),
		Lessons:    lessonstore.New(db),
		Exercises:  exercisestore.New(db),
		Users:      userstore.New(db),
		Roles:      roles,
		SessionMgr: sm,
		Audit:      audit,
		Metrics:    m,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// notify queues a flash for the page the admin is redirected to.
func (h *Handler) notify(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if h.SessionMgr != nil {
		h.SessionMgr.AddFlash(w, r, kind, msg)
	}
}

// contentChanged records a successful content mutation in the audit log
// and the admin write counter.
func (h *Handler) contentChanged(r *http.Request, targetID primitive.ObjectID, resource, action, title string) {
	var actorID primitive.ObjectID
	if u, ok := auth.CurrentUser(r); ok {
		actorID, _ = primitive.ObjectIDFromHex(u.ID)
	}
	h.Audit.ContentChanged(r.Context(), r, actorID, targetID, resource, action, title)
	h.Metrics.ContentChanged(resource, action)
}

// idParam parses the {id} path segment.
func idParam(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

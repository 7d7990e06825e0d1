// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EventSource reads the audit trail. *audit.Store satisfies it.
type EventSource interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

// EmailResolver maps user ids to emails. *userstore.Store satisfies it.
type EmailResolver interface {
	EmailsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type Handler struct {
	Events     EventSource
	Users      EmailResolver
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs the audit journal handler over the audit_events
// and users collections.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:     audit.New(db),
		Users:      userstore.New(db),
		SessionMgr: sm,
		ErrLog:     errLog,
		Log:        logger,
	}
}

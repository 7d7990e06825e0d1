// internal/app/features/profile/handler.go
package profile

import (
	"context"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Accounts is the part of account.Service the profile page uses.
type Accounts interface {
	CurrentUser(ctx context.Context, id primitive.ObjectID) (*account.Current, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in account.ProfileInput) error
	ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string, meta account.RequestMeta) error
}

// Activity lists a user's most recent audit events, newest first.
type Activity interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]audit.Event, error)
}

// Handler owns all user profile handlers.
type Handler struct {
	Accounts   Accounts
	Activity   Activity
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(accounts Accounts, activity Activity, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   accounts,
		Activity:   activity,
		SessionMgr: sm,
		ErrLog:     errLog,
		Log:        logger,
	}
}

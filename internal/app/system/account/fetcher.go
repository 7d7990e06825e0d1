package account

import (
	"context"
	"errors"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// FetchUser implements auth.UserFetcher. It runs on every signed-in request,
// so the profile is created here the first time a user is seen.
// It returns nil when the user is gone or cannot be loaded.
func (s *Service) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	cur, err := s.CurrentUser(ctx, oid)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Warn("load session user failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	return &auth.SessionUser{
		ID:        cur.User.ID.Hex(),
		Email:     cur.User.Email,
		Name:      cur.DisplayName(),
		Role:      models.NormalizeRole(cur.User.Role),
		Confirmed: cur.User.IsConfirmed(),
	}
}

// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	"github.com/dalemusser/mathmastery/internal/app/store/confirmations"
	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	"github.com/dalemusser/mathmastery/internal/app/store/oauthstate"
	profilestore "github.com/dalemusser/mathmastery/internal/app/store/profiles"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ensurer interface {
	EnsureIndexes(ctx context.Context) error
}

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, s := range []struct {
		coll string
		e    ensurer
	}{
		{"users", userstore.New(db)},
		{"user_profiles", profilestore.New(db)},
		{"chapters", chapterstore.New(db)},
		{"lessons", lessonstore.New(db)},
		{"exercises", exercisestore.New(db)},
		{"email_confirmations", confirmations.New(db, 0)},
		{"oauth_states", oauthstate.New(db)},
		{"audit_events", audit.New(db)},
	} {
		if err := s.e.EnsureIndexes(ctx); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
			continue
		}
		zap.L().Debug("indexes ensured", zap.String("collection", s.coll))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

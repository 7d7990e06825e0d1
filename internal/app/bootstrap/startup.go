// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	homefeature "github.com/dalemusser/mathmastery/internal/app/features/home"
	"github.com/dalemusser/mathmastery/internal/app/resources"
	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/mailer"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if appCfg.AdminEmail != "" {
		accounts := account.NewService(deps.MongoDatabase, mailer.NewLogSender(logger), nil, account.Config{}, logger)
		if err := accounts.EnsureAdmin(ctx, appCfg.AdminEmail); err != nil {
			logger.Error("admin bootstrap failed", zap.String("email", appCfg.AdminEmail), zap.Error(err))
			return err
		}
	}

	if appCfg.SeedChapters {
		if err := seedChapters(ctx, deps.MongoDatabase, logger); err != nil {
			logger.Error("chapter seeding failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// seedChapters inserts the landing page chapters when no chapter exists yet.
func seedChapters(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	store := chapterstore.New(db)
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count chapters: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, card := range homefeature.Chapters {
		if _, err := store.Create(ctx, models.Chapter{
			Title:       card.Title,
			Description: card.Description,
			Color:       card.Accent,
			Icon:        card.Icon,
		}); err != nil {
			return fmt.Errorf("seed chapter %q: %w", card.Title, err)
		}
	}
	logger.Info("seeded chapters", zap.Int("count", len(homefeature.Chapters)))
	return nil
}

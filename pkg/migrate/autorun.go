package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-commerce/pkg/config"
	"github.com/angelmondragon/storefront-commerce/pkg/db"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite runs always get their schema because the
// database lives in memory.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.FeatureFlags.UseSQLite {
		ctx = logg.WithField(ctx, "driver", db.DriverSQLite)
		logg.Info(ctx, "creating sqlite schema from models")
		return AutoMigrateModels(ctx, client)
	}
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates the schema straight from the gorm models. Used for
// sqlite where the postgres migrations do not apply.
func AutoMigrateModels(ctx context.Context, client *db.Client) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrating models: %w", err)
	}
	return nil
}

package migrate

import (
	"context"
	"fmt"

	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// MaybeRunDev migrates on startup when both the dev env and the
// auto-migrate flag are set. The SQL files are written for Postgres, so
// SQLite databases get their schema from the GORM models instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithField(ctx, "driver", client.Dialect())

	if client.Dialect() == config.DBDriverSQLite {
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("gorm auto-migrate: %w", err)
		}
		logg.Info(ctx, "migrate.automigrated")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	runner, err := NewRunner(sqlDB, client.Dialect(), Embedded(), logg)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.Run(ctx, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.up_to_date")
	return nil
}

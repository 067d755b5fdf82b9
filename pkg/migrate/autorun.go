package migrate

import (
	"context"
	"fmt"

	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/db"
	"github.com/tatame/tatame-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when running in dev with
// TATAME_AUTO_MIGRATE set. Other environments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client.Driver() != db.DriverPostgres {
		logg.Warn(ctx, "skipping auto-migrate: embedded migrations target postgres")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	runner, err := NewRunner(sqlDB, "", logg)
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "service", cfg.Service.Kind)
	return runner.Up(ctx)
}

package migrate

import (
	"context"
	"fmt"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on api startup, only in dev
// with DEALEROS_AUTO_MIGRATE enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if err := ValidateEmbedded(); err != nil {
		return fmt.Errorf("embedded migrations invalid: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "source", "embedded")
	logg.Info(ctx, "migrations.autorun.start")
	if err := Run(ctx, sqlDB, "up"); err != nil {
		return err
	}

	version, err := Version(ctx, sqlDB)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "version", version), "migrations.autorun.complete")
	return nil
}

package migration

import (
	"github.com/altura-labs/countryatlas/internal/config"
	"github.com/altura-labs/countryatlas/internal/country/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(run),
)

func run(cfg config.Config, conn *gorm.DB, log *zap.Logger) error {
	if cfg.DBType != "postgres" {
		// sqlite deployments (dev) get their schema from gorm directly.
		return conn.AutoMigrate(&domain.CountryRecord{}, &domain.RefreshMetadata{})
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

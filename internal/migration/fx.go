package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/config"
	"github.com/lordsbespoke/atelier/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}

		if err := seed.EnsureRootAdmin(conn); err != nil {
			return err
		}
		return seed.EnsureDefaultRates(conn)
	}),
)

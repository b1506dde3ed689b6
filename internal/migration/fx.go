package migration

import (
	"github.com/smallbiznis/stocktake/internal/config"
	"github.com/smallbiznis/stocktake/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if !cfg.Bootstrap.EnsureDefaultOrg {
			return nil
		}
		orgID, err := seed.EnsureMainOrg(conn, cfg.DefaultOrgID)
		if err != nil {
			return err
		}
		if cfg.Bootstrap.SeedDemoCatalog {
			return seed.EnsureDemoCatalog(conn, orgID)
		}
		return nil
	}),
)

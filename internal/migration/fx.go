package migration

import (
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	"github.com/mentorly/mentorly/internal/config"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// mysql and sqlite are dev conveniences; the schema is derived
		// from the models instead of versioned migrations.
		return conn.AutoMigrate(
			&pricingruledomain.PricingRule{},
			&pricingruledomain.DiscountTier{},
			&discountruledomain.DiscountRule{},
			&bundledomain.BundlePackage{},
		)
	}),
)

package migration

import (
	"github.com/parityhq/paritybanner/internal/config"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	"github.com/parityhq/paritybanner/internal/seed"
	subscriptiondomain "github.com/parityhq/paritybanner/internal/subscription/domain"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
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
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dialects without a checked-in migration path (sqlite for local
			// runs, mysql) get the schema from the models directly.
			if err := conn.AutoMigrate(
				&countrydomain.CountryGroup{},
				&countrydomain.Country{},
				&productdomain.Product{},
				&productdomain.ProductCustomization{},
				&productdomain.CountryGroupDiscount{},
				&viewdomain.ProductView{},
				&subscriptiondomain.UserSubscription{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureParityGroups(conn)
	}),
)

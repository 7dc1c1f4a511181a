package migration

import (
	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
	auditdomain "github.com/smallbiznis/linkpage/internal/audit/domain"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	"github.com/smallbiznis/linkpage/internal/config"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite installs sync the schema from the models.
			if err := conn.AutoMigrate(
				&identitydomain.User{},
				&contentdomain.Page{},
				&contentdomain.Block{},
				&analyticsdomain.Shortlink{},
				&analyticsdomain.AnalyticsEvent{},
				&billingdomain.Package{},
				&billingdomain.Subscription{},
				&billingdomain.Payment{},
				&auditdomain.AdminAuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultPackages(conn, node)
	}),
)

package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	"github.com/smallbiznis/telcox/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		log = log.Named("migration")
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}
		log.Info("schema ready", zap.String("dialect", cfg.DBType))

		if !cfg.SeedDefaultPlans {
			return nil
		}
		created, err := seed.EnsureDefaultPlans(context.Background(), conn, node, clk.Now())
		if err != nil {
			return err
		}
		if created > 0 {
			log.Info("default plans seeded", zap.Int("count", created))
		}
		return nil
	}),
)

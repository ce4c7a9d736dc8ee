package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	"github.com/smallbiznis/telcox/internal/kvstore"
	"github.com/smallbiznis/telcox/internal/migration"
	"github.com/smallbiznis/telcox/internal/observability"
	"github.com/smallbiznis/telcox/internal/server"
	"github.com/smallbiznis/telcox/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		kvstore.Module,
		migration.Module,

		// HTTP surface and the domain services behind it
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/inkworks/printshop/internal/clock"
	"github.com/inkworks/printshop/internal/config"
	"github.com/inkworks/printshop/internal/logger"
	"github.com/inkworks/printshop/internal/migration"
	"github.com/inkworks/printshop/internal/seed"
	"github.com/inkworks/printshop/internal/server"
	"github.com/inkworks/printshop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		// Schema and demo data, in that order
		migration.Module,
		seed.Module,

		// Functional domains plus the HTTP surface
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

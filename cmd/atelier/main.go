package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/lordsbespoke/atelier/internal/clock"
	"github.com/lordsbespoke/atelier/internal/config"
	"github.com/lordsbespoke/atelier/internal/migration"
	"github.com/lordsbespoke/atelier/internal/observability"
	"github.com/lordsbespoke/atelier/internal/server"
	"github.com/lordsbespoke/atelier/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

package main

import (
	"github.com/altura-labs/countryatlas/internal/clock"
	"github.com/altura-labs/countryatlas/internal/config"
	"github.com/altura-labs/countryatlas/internal/country"
	"github.com/altura-labs/countryatlas/internal/migration"
	"github.com/altura-labs/countryatlas/internal/observability"
	"github.com/altura-labs/countryatlas/internal/refresh"
	"github.com/altura-labs/countryatlas/internal/server"
	"github.com/altura-labs/countryatlas/internal/summary"
	"github.com/altura-labs/countryatlas/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		country.Module,
		summary.Module,
		refresh.Module,
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

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/clock"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/migration"
	"github.com/smallbiznis/quotient/internal/observability"
	"github.com/smallbiznis/quotient/internal/pushmetrics"
	"github.com/smallbiznis/quotient/internal/scheduler"
	"github.com/smallbiznis/quotient/internal/secrets"
	"github.com/smallbiznis/quotient/internal/server"
	"github.com/smallbiznis/quotient/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		secrets.Module,
		migration.Module,

		// HTTP API plus the domain services behind it.
		server.Module,

		// Background auto-transfer sweep; idle unless enabled in transfer.yml.
		pushmetrics.Module,
		scheduler.Module,
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

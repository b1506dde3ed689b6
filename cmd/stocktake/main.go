package main

import (
	"github.com/smallbiznis/stocktake/internal/clock"
	"github.com/smallbiznis/stocktake/internal/migration"
	"github.com/smallbiznis/stocktake/internal/observability"
	"github.com/smallbiznis/stocktake/internal/server"
	"github.com/smallbiznis/stocktake/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface; pulls in the room, item, count and barcode domains.
		server.Module,
	)
	app.Run()
}

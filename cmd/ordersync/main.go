package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/lock"
	"github.com/merchlab/ordersync/internal/logger"
	"github.com/merchlab/ordersync/internal/metrics"
	"github.com/merchlab/ordersync/internal/migration"
	"github.com/merchlab/ordersync/internal/server"
	"github.com/merchlab/ordersync/pkg/db"
	"go.uber.org/fx"
)

func main() {
	metrics.Register()

	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
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

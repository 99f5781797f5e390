package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/delivery"
	"github.com/merchlab/ordersync/internal/erp"
	"github.com/merchlab/ordersync/internal/lock"
	"github.com/merchlab/ordersync/internal/logger"
	"github.com/merchlab/ordersync/internal/metrics"
	"github.com/merchlab/ordersync/internal/migration"
	"github.com/merchlab/ordersync/internal/notification"
	"github.com/merchlab/ordersync/internal/providers/email"
	"github.com/merchlab/ordersync/internal/providers/pdf"
	"github.com/merchlab/ordersync/internal/quote"
	"github.com/merchlab/ordersync/internal/scheduler"
	"github.com/merchlab/ordersync/internal/statusboard"
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

		erp.Module,
		quote.Module,
		delivery.Module,
		email.Module,
		pdf.Module,
		notification.Module,
		statusboard.Module,
		scheduler.Module,

		// No server module: this binary only runs the sync loop.
		fx.Invoke(StartScheduler),
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

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.RunForever(context.Background())
			return nil
		},
	})
}

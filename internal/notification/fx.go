package notification

import (
	"github.com/merchlab/ordersync/internal/notification/repository"
	"github.com/merchlab/ordersync/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.dispatcher",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

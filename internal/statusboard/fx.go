package statusboard

import (
	"github.com/merchlab/ordersync/internal/statusboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("statusboard",
	fx.Provide(service.New),
)

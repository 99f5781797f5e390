package erp

import (
	"github.com/merchlab/ordersync/internal/erp/client"
	"github.com/merchlab/ordersync/internal/erp/token"
	"go.uber.org/fx"
)

var Module = fx.Module("erp",
	token.Module,
	fx.Provide(client.New),
)

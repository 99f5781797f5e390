package quote

import (
	"github.com/merchlab/ordersync/internal/quote/repository"
	"github.com/merchlab/ordersync/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.correlator",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package token

import "go.uber.org/fx"

var Module = fx.Module("erp.token",
	fx.Provide(
		NewStore,
		NewManager,
	),
)

package usage

import "go.uber.org/fx"

// Module exposes the usage reporting service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)

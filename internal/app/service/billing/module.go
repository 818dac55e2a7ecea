package billing

import "go.uber.org/fx"

// Module exposes the billing router/orchestrator via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)

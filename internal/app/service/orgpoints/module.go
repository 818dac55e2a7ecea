package orgpoints

import "go.uber.org/fx"

// Module exposes the organization points ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)

package quota

import "go.uber.org/fx"

// Module exposes the teacher quota ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)

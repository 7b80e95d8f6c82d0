package pushmetrics

import "go.uber.org/fx"

var Module = fx.Module("push.metrics",
	fx.Provide(NewPusher),
)

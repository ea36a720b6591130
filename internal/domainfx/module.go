package domainfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(LoadConfig),
	fx.Provide(LoadSchedule),
	fx.Provide(Rotator),
	fx.Provide(Sweeper),
	fx.Provide(LogManager),
	fx.Provide(Timer),
	fx.Invoke(RunTimer),
)

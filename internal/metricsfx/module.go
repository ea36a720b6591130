package metricsfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(HttpServerConfigProvider),
	fx.Provide(HttpServer),
	fx.Provide(HttpRouter),
	fx.Provide(Listener),
	fx.Invoke(RunServer),

	fx.Provide(Collector),
	fx.Provide(RecentCyclesHandler),
	fx.Provide(RunCycleHandler),
	fx.Provide(ScheduleHandler),
	fx.Invoke(RegisterStatusHandlers),
)

package main

import (
	"time"

	"go.uber.org/fx"

	"github.com/yurykabanov/logrotd/internal/configfx"
	"github.com/yurykabanov/logrotd/internal/domainfx"
	"github.com/yurykabanov/logrotd/internal/loggerfx"
	"github.com/yurykabanov/logrotd/internal/metricsfx"
	"github.com/yurykabanov/logrotd/internal/sqlfx"
)

func main() {
	logger := loggerfx.Logger()

	app := fx.New(
		fx.StartTimeout(15*time.Second),
		// Gives a running rotation cycle room to finish.
		fx.StopTimeout(time.Minute),

		fx.Logger(logger),

		loggerfx.Module,
		configfx.Module,
		sqlfx.Module,
		metricsfx.Module,
		domainfx.Module,
	)

	app.Run()
}

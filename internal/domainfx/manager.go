package domainfx

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/yurykabanov/logrotd/pkg/domain"
	"github.com/yurykabanov/logrotd/pkg/errsink"
	"github.com/yurykabanov/logrotd/pkg/retention"
	"github.com/yurykabanov/logrotd/pkg/rotation"
	"github.com/yurykabanov/logrotd/pkg/schedule"
)

func Rotator() *rotation.Rotator {
	return rotation.New(rotation.DefaultFiler())
}

func Sweeper(config domain.Config) *retention.Sweeper {
	return retention.New(config.Retention, retention.DefaultFiler())
}

type LogManagerParams struct {
	fx.In

	Logger    *logrus.Logger
	Config    domain.Config
	Rotator   *rotation.Rotator
	Sweeper   *retention.Sweeper
	Sink      errsink.Sink `optional:"true"`
	Observers []domain.CycleObserver `group:"cycle_observers"`
}

func LogManager(p LogManagerParams) (*domain.LogManager, error) {
	return domain.NewLogManager(p.Logger, p.Config, p.Rotator, p.Sweeper, p.Sink, p.Observers...)
}

func Timer(logger *logrus.Logger, sched Schedule, manager *domain.LogManager) *schedule.Timer {
	return schedule.NewTimer(logger.WithField("schedule", sched.Description), sched.Schedule, manager.Job())
}

func RunTimer(lc fx.Lifecycle, logger *logrus.Logger, config domain.Config, sched Schedule, timer *schedule.Timer) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.WithFields(logrus.Fields{
				"directory": config.Directory,
				"streams":   len(config.Streams),
				"schedule":  sched.Description,
			}).Info("Starting log manager")

			timer.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// A cycle in progress is allowed to finish.
			timer.Stop()
			return nil
		},
	})
}

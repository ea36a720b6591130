package metricsfx

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/yurykabanov/logrotd/internal/domainfx"
	"github.com/yurykabanov/logrotd/pkg/domain"
	"github.com/yurykabanov/logrotd/pkg/http/handler"
	"github.com/yurykabanov/logrotd/pkg/metrics"
	"github.com/yurykabanov/logrotd/pkg/schedule"
)

type CollectorResult struct {
	fx.Out

	Collector *metrics.Collector
	Observer  domain.CycleObserver `group:"cycle_observers"`
}

func Collector() CollectorResult {
	c := metrics.NewCollector(nil)

	return CollectorResult{Collector: c, Observer: c}
}

func RecentCyclesHandler(logger *logrus.Logger, repository handler.CycleRepository) *handler.RecentCyclesHandler {
	return handler.NewRecentCyclesHandler(logger, repository)
}

func RunCycleHandler(logger *logrus.Logger, manager *domain.LogManager) *handler.RunCycleHandler {
	return handler.NewRunCycleHandler(logger, manager)
}

func ScheduleHandler(logger *logrus.Logger, sched domainfx.Schedule, timer *schedule.Timer) *handler.ScheduleHandler {
	return handler.NewScheduleHandler(logger, sched.Description, timer)
}

func RegisterStatusHandlers(
	router *mux.Router,
	cycles *handler.RecentCyclesHandler,
	run *handler.RunCycleHandler,
	sched *handler.ScheduleHandler,
	collector *metrics.Collector,
) {
	router.Handle("/status/cycles", cycles).Methods(http.MethodGet)
	router.Handle("/status/schedule", sched).Methods(http.MethodGet)
	router.Handle("/cycles", run).Methods(http.MethodPost)
	router.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)
}

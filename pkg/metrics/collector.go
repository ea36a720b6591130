// Package metrics exposes rotation cycle outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yurykabanov/logrotd/pkg/domain"
)

const namespace = "logrotd"

type Collector struct {
	registry *prometheus.Registry

	rotations     *prometheus.CounterVec
	archivedBytes *prometheus.CounterVec
	deleted       prometheus.Counter
	cycleErrors   prometheus.Counter
	cycleDuration prometheus.Histogram
	lastCycle     prometheus.Gauge
}

// NewCollector registers every metric on registry, a fresh registry is
// created when nil.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Live file rotations by stream and result.",
		}, []string{"stream", "result"}),

		archivedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archived_bytes_total",
			Help:      "Bytes copied from live files into archives.",
		}, []string{"stream"}),

		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_deleted_total",
			Help:      "Expired archives removed by the retention sweep.",
		}),

		cycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Failures reported during rotation cycles.",
		}),

		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a rotation cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}),

		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last rotation cycle finished.",
		}),
	}

	registry.MustRegister(
		c.rotations,
		c.archivedBytes,
		c.deleted,
		c.cycleErrors,
		c.cycleDuration,
		c.lastCycle,
	)

	return c
}

func (c *Collector) ObserveCycle(_ context.Context, report domain.CycleReport) error {
	for _, rot := range report.Rotations {
		result := "success"
		if rot.Failed() {
			result = "failure"
		}

		c.rotations.WithLabelValues(rot.Stream.LiveFile, result).Inc()
		c.archivedBytes.WithLabelValues(rot.Stream.LiveFile).Add(float64(rot.Bytes))
	}

	c.deleted.Add(float64(len(report.Sweep.Deleted)))
	c.cycleErrors.Add(float64(len(report.Errors())))
	c.cycleDuration.Observe(report.Duration().Seconds())
	c.lastCycle.Set(float64(report.FinishedAt.Unix()))

	return nil
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

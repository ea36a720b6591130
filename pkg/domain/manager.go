package domain

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/logrotd/pkg/appcontext"
	"github.com/yurykabanov/logrotd/pkg/errsink"
	"github.com/yurykabanov/logrotd/pkg/retention"
	"github.com/yurykabanov/logrotd/pkg/rotation"
)

// LogManager is the core of logrotd. On every trigger it archives and
// empties each configured live file, then sweeps expired archives once.
// Failures never stop it: they go to the error sink and into the cycle
// report, the next cycle runs as usual.
type LogManager struct {
	logger logrus.FieldLogger

	config Config

	rotator rotator
	sweeper sweeper

	// Nil means failures are logged with the cycle and stream fields.
	sink      errsink.Sink
	observers []CycleObserver

	now func() time.Time

	// Cycles never overlap, a manual run waits for the scheduled one.
	mu sync.Mutex
}

type rotator interface {
	Rotate(livePath, archivePath string, sink errsink.Sink) rotation.Result
}

type sweeper interface {
	Sweep(dir, pattern string, now time.Time, sink errsink.Sink) retention.Result
}

func NewLogManager(
	logger logrus.FieldLogger,
	config Config,
	rotator rotator,
	sweeper sweeper,
	sink errsink.Sink,
	observers ...CycleObserver,
) (*LogManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &LogManager{
		logger: logger,

		config: config,

		rotator: rotator,
		sweeper: sweeper,

		sink:      sink,
		observers: observers,

		now: time.Now,
	}, nil
}

func (m *LogManager) Config() Config {
	return m.config
}

// Job adapts the manager to a timer: every run is a cycle triggered at the
// current wall-clock time.
func (m *LogManager) Job() cron.Job {
	return cron.FuncJob(func() {
		m.RunCycle(context.Background(), m.now())
	})
}

func (m *LogManager) RunCycle(ctx context.Context, trigger time.Time) CycleReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := CycleReport{
		Id:        uuid.New().String(),
		TriggerAt: trigger,
		StartedAt: m.now(),
	}

	ctx = appcontext.WithCycleId(ctx, report.Id)
	logger := appcontext.LoggerFromContext(m.logger, ctx)

	logger.WithFields(logrus.Fields{
		"trigger_at": trigger,
		"streams":    len(m.config.Streams),
	}).Info("Starting rotation cycle")

	reportMu := &sync.Mutex{}
	collect := func(ctx context.Context) errsink.Sink {
		out := m.sinkFor(ctx)

		return func(err error) {
			reportMu.Lock()
			report.addError(err)
			reportMu.Unlock()

			out.Report(err)
		}
	}

	report.Rotations = make([]StreamRotation, len(m.config.Streams))

	wg := &sync.WaitGroup{}
	wg.Add(len(m.config.Streams))

	for i, stream := range m.config.Streams {
		go func(i int, stream Stream) {
			defer wg.Done()
			streamCtx := appcontext.WithStream(ctx, stream.LiveFile)
			report.Rotations[i] = m.rotateStream(streamCtx, stream, trigger, collect(streamCtx))
		}(i, stream)
	}

	// New archives have to exist before the sweep looks at the directory.
	wg.Wait()

	report.Sweep = m.sweepArchives(ctx, trigger, collect(ctx))
	report.FinishedAt = m.now()

	logger.WithFields(logrus.Fields{
		"duration_ms": report.Duration().Nanoseconds() / 1e6,
		"deleted":     len(report.Sweep.Deleted),
		"failures":    len(report.Errors()),
	}).Info("Rotation cycle finished")

	for _, observer := range m.observers {
		if err := observer.ObserveCycle(ctx, report); err != nil {
			m.sinkFor(ctx).Report(errors.Wrap(err, "unable to record rotation cycle"))
		}
	}

	return report
}

func (m *LogManager) sinkFor(ctx context.Context) errsink.Sink {
	if m.sink != nil {
		return m.sink
	}

	return errsink.Logger(appcontext.LoggerFromContext(m.logger, ctx))
}

func (m *LogManager) rotateStream(ctx context.Context, stream Stream, trigger time.Time, sink errsink.Sink) StreamRotation {
	logger := appcontext.LoggerFromContext(m.logger, ctx)

	live := m.config.LivePath(stream)
	archive := m.config.ArchivePath(stream, trigger)

	logger.WithField("archive", archive).Debug("Rotating live file")

	result := m.rotator.Rotate(live, archive, sink)

	fields := logrus.Fields{"archive": archive, "bytes": result.Bytes}
	if result.Failed() {
		logger.WithFields(fields).Warn("Live file rotated with failures")
	} else {
		logger.WithFields(fields).Info("Live file rotated")
	}

	return StreamRotation{Stream: stream, Result: result}
}

func (m *LogManager) sweepArchives(ctx context.Context, now time.Time, sink errsink.Sink) retention.Result {
	logger := appcontext.LoggerFromContext(m.logger, ctx)

	logger.Debug("Sweeping old archives")
	result := m.sweeper.Sweep(m.config.Directory, retention.DefaultPattern, now, sink)

	if result.Gated {
		logger.WithField("matched", len(result.Matched)).Debug("Too few archives, sweep skipped")
	}

	for _, file := range result.Deleted {
		logger.WithField("archive", file).Info("Archive expired and removed")
	}

	return result
}

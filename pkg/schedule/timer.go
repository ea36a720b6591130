package schedule

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultMaxWait bounds a single sleep so that wall-clock jumps (NTP
// corrections, DST, suspended hosts) are noticed within a minute.
const DefaultMaxWait = time.Minute

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// WallClock is the system clock.
func WallClock() Clock {
	return wallClock{}
}

// Timer runs a job at every instant produced by a schedule until stopped.
// The next instant is always computed from the current wall-clock time, so a
// long sleep or a clock jump results in a single run, never a burst. A job
// that panics is logged and the timer keeps going. A stopped timer can be
// started again.
type Timer struct {
	logger   logrus.FieldLogger
	schedule cron.Schedule
	job      cron.Job
	clock    Clock
	maxWait  time.Duration

	mu   sync.Mutex
	next time.Time

	// lifecycle guards running, stop and done.
	lifecycle sync.Mutex
	running   bool
	stop      chan struct{}
	done      chan struct{}
}

type TimerOption func(*Timer)

func WithClock(clock Clock) TimerOption {
	return func(t *Timer) {
		t.clock = clock
	}
}

func WithMaxWait(d time.Duration) TimerOption {
	return func(t *Timer) {
		if d > 0 {
			t.maxWait = d
		}
	}
}

func NewTimer(logger logrus.FieldLogger, schedule cron.Schedule, job cron.Job, opts ...TimerOption) *Timer {
	t := &Timer{
		logger:   logger,
		schedule: schedule,
		job:      job,
		clock:    WallClock(),
		maxWait:  DefaultMaxWait,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.job = cron.NewChain(cron.Recover(CronLogger(logger))).Then(job)

	return t
}

func (t *Timer) Start() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if t.running {
		return
	}

	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.run(t.stop, t.done)
}

// Stop ends the loop and waits for a job in progress to return.
func (t *Timer) Stop() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if !t.running {
		return
	}

	close(t.stop)
	<-t.done

	t.running = false
	t.setNext(time.Time{})
}

// Next is the instant the timer is currently waiting for, zero if none.
func (t *Timer) Next() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.next
}

func (t *Timer) setNext(next time.Time) {
	t.mu.Lock()
	t.next = next
	t.mu.Unlock()
}

func (t *Timer) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		next := t.schedule.Next(t.clock.Now())
		t.setNext(next)

		if next.IsZero() {
			t.logger.Warn("Schedule has no further trigger times, timer is idle")
			<-stop
			return
		}

		t.logger.WithField("next", next).Debug("Waiting for next trigger")

		if !t.wait(next, stop) {
			return
		}

		t.job.Run()
	}
}

// wait sleeps until the wall clock reaches next. It returns false if the
// timer was stopped meanwhile.
func (t *Timer) wait(next time.Time, stop <-chan struct{}) bool {
	for {
		now := t.clock.Now().Round(0)
		if !now.Before(next) {
			return true
		}

		d := next.Sub(now)
		if d > t.maxWait {
			d = t.maxWait
		}

		select {
		case <-stop:
			return false
		case <-t.clock.After(d):
		}
	}
}

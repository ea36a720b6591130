package domain

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/yurykabanov/logrotd/pkg/retention"
	"github.com/yurykabanov/logrotd/pkg/rotation"
)

// CycleReport describes one rotation cycle: every stream rotation followed
// by a single retention sweep.
type CycleReport struct {
	Id         string
	TriggerAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	Rotations []StreamRotation
	Sweep     retention.Result

	errs error
}

type StreamRotation struct {
	Stream Stream
	rotation.Result
}

func (r *CycleReport) addError(err error) {
	r.errs = multierr.Append(r.errs, err)
}

// Err combines every failure reported during the cycle, nil if none.
func (r CycleReport) Err() error {
	return r.errs
}

func (r CycleReport) Errors() []error {
	return multierr.Errors(r.errs)
}

func (r CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r CycleReport) Summary() CycleSummary {
	summary := CycleSummary{
		Id:         r.Id,
		TriggerAt:  r.TriggerAt,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Deleted:    len(r.Sweep.Deleted),
	}

	for _, rot := range r.Rotations {
		if rot.Failed() {
			continue
		}
		summary.Rotated++
	}

	errs := r.Errors()
	summary.Failures = len(errs)
	if len(errs) > 0 {
		summary.FirstError = errs[0].Error()
	}

	return summary
}

// CycleSummary is the persisted, flattened form of a CycleReport.
type CycleSummary struct {
	Id         string    `json:"id" db:"id"`
	TriggerAt  time.Time `json:"trigger_at" db:"trigger_at"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Rotated    int       `json:"rotated" db:"rotated"`
	Deleted    int       `json:"deleted" db:"deleted"`
	Failures   int       `json:"failures" db:"failures"`
	FirstError string    `json:"first_error,omitempty" db:"first_error"`
}

// CycleObserver is notified after every cycle. The journal and the metrics
// collector are observers.
type CycleObserver interface {
	ObserveCycle(ctx context.Context, report CycleReport) error
}

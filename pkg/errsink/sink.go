// Package errsink holds the callback through which rotation and retention
// report failures instead of returning them.
package errsink

import (
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type Sink func(err error)

// Report calls the sink for non-nil errors only.
func (s Sink) Report(err error) {
	if err == nil || s == nil {
		return
	}

	s(err)
}

func Discard(error) {}

// Logger writes every reported error at error level.
func Logger(logger logrus.FieldLogger) Sink {
	return func(err error) {
		logger.WithError(err).Error("Log rotation failure")
	}
}

// Tee reports to every sink in order.
func Tee(sinks ...Sink) Sink {
	return func(err error) {
		for _, s := range sinks {
			s.Report(err)
		}
	}
}

// Collector accumulates reported errors; safe for concurrent use.
type Collector struct {
	mu  sync.Mutex
	err error
}

func (c *Collector) Sink() Sink {
	return func(err error) {
		c.mu.Lock()
		c.err = multierr.Append(c.err, err)
		c.mu.Unlock()
	}
}

func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

func (c *Collector) Errors() []error {
	return multierr.Errors(c.Err())
}

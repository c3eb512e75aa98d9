package lrureap

import (
	"fmt"
	"time"
)

type (
	config struct {
		logger       Logger
		sweepTimeout time.Duration
	}
	// Option configures a [Cache] constructed by [New].
	Option func(*config) error
)

// DefaultSweepTimeout is how long a sweep waits for the
// cache lock before it is skipped, unless [WithSweepTimeout] is used.
const DefaultSweepTimeout = 100 * time.Millisecond

func defaultConfig() *config {
	return &config{
		logger:       defaultLogger{},
		sweepTimeout: DefaultSweepTimeout,
	}
}

// WithLogger sets the destination of the cache's log events.
// By default, Info and Error events are written to the standard logger.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		c.logger = logger
		return nil
	}
}

// WithSweepTimeout bounds how long a background sweep
// waits to lock the cache before giving up for that period.
func WithSweepTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return fmt.Errorf(
				"%w: sweep timeout must be positive but %s was requested",
				ErrInvalidOption, timeout)
		}
		c.sweepTimeout = timeout
		return nil
	}
}

package lrureap

import (
	"fmt"
	"time"
)

type constError string

const (
	// ErrInvalidCapacity may be returned from [New].
	ErrInvalidCapacity = constError("invalid capacity")
	// ErrInvalidOption may be returned from [New]
	// when an [Option] is given an unusable value.
	ErrInvalidOption = constError("invalid option")
	// ErrInvalidPeriod may be returned from [Cache.Start].
	ErrInvalidPeriod = constError("invalid sweep period")
	// ErrReaperRunning is returned from [Cache.Start]
	// if the reaper was already started.
	ErrReaperRunning = constError("reaper already running")
	// ErrReaperStopped is returned from [Cache.Start]
	// after [Cache.Stop] was called.
	ErrReaperStopped = constError("reaper stopped")
	// ErrLockTimeout is returned from [Cache.Sweep] if the
	// cache could not be locked before its context was done.
	ErrLockTimeout = constError("lock acquisition timed out")
)

func (errStr constError) Error() string { return string(errStr) }

func minCapacityError(capacity int) error {
	return fmt.Errorf(
		"%w: must be >=%d but %d was requested",
		ErrInvalidCapacity, MinimumCapacity, capacity)
}

func periodError(period time.Duration) error {
	return fmt.Errorf(
		"%w: must be positive but %s was requested",
		ErrInvalidPeriod, period)
}

func lockTimeoutError(cause error) error {
	return fmt.Errorf("%w: %w", ErrLockTimeout, cause)
}

package lrureap

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

type (
	// ReaperState is the lifecycle state of a cache's reaper.
	ReaperState int32
	reaper      struct {
		mu    sync.Mutex // Serializes Start and Stop.
		state atomic.Int32
		stop  chan struct{}
		done  chan struct{}
	}
)

const (
	// Idle is the reaper's state between sweeps,
	// and before [Cache.Start] is called.
	Idle ReaperState = iota
	// Sweeping is the reaper's state while a sweep is in progress.
	Sweeping
	// Stopped is the terminal state entered by [Cache.Stop].
	Stopped
)

func (s ReaperState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sweeping:
		return "sweeping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State returns the current state of the cache's reaper.
func (c *Cache[_, _]) State() ReaperState {
	return ReaperState(c.reaper.state.Load())
}

// Start launches the reaper, which calls [Cache.Sweep]
// once every period until [Cache.Stop] is called.
// Sweeps that cannot lock the cache within the configured
// sweep timeout (see [WithSweepTimeout]) are skipped and logged.
func (c *Cache[_, _]) Start(period time.Duration) error {
	if period <= 0 {
		return periodError(period)
	}
	r := &c.reaper
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case ReaperState(r.state.Load()) == Stopped:
		return ErrReaperStopped
	case r.stop != nil:
		return ErrReaperRunning
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go c.reap(time.NewTicker(period), r.stop, r.done)
	c.logger.Info("reaper started",
		Field{Key: "period", Value: period})
	return nil
}

// Stop terminates the reaper, waiting for an in-flight sweep to
// finish first. A stopped reaper cannot be restarted.
// Calling Stop more than once, or before Start, is allowed.
func (c *Cache[_, _]) Stop() {
	r := &c.reaper
	r.mu.Lock()
	defer r.mu.Unlock()
	if ReaperState(r.state.Load()) == Stopped {
		return
	}
	running := r.stop != nil
	if running {
		close(r.stop)
		<-r.done
	}
	r.state.Store(int32(Stopped))
	if running {
		c.logger.Info("reaper stopped")
	}
}

func (c *Cache[_, _]) reap(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A tick may race with Stop; Stop wins.
			select {
			case <-stop:
				return
			default:
			}
			c.sweepPeriod()
		}
	}
}

func (c *Cache[_, _]) sweepPeriod() {
	state := &c.reaper.state
	state.Store(int32(Sweeping))
	defer state.Store(int32(Idle))
	ctx, cancel := context.WithTimeout(context.Background(), c.sweepTimeout)
	defer cancel()
	if _, _, err := c.Sweep(ctx); err != nil {
		c.logger.Error("sweep skipped",
			Field{Key: "timeout", Value: c.sweepTimeout},
			Field{Key: "error", Value: err})
	}
}

// Sweep evicts the least frequently used page.
// When several pages share the lowest count, the lowest key is evicted.
// It reports the evicted key, or false if the cache was empty.
// If the cache cannot be locked before ctx is done,
// nothing is evicted and the error wraps [ErrLockTimeout].
func (c *Cache[Key, _]) Sweep(ctx context.Context) (key Key, evicted bool, err error) {
	if err := c.lock.Acquire(ctx, 1); err != nil {
		c.stats.sweepsSkipped.Inc()
		return key, false, lockTimeoutError(err)
	}
	key, hits, evicted := c.sweep()
	c.release()
	c.stats.sweeps.Inc()
	if evicted {
		c.stats.sweepEvictions.Inc()
		c.logger.Info("removed least frequently used page",
			Field{Key: "key", Value: key},
			Field{Key: "hits", Value: hits})
	}
	return key, evicted, nil
}

func (c *Cache[Key, _]) sweep() (Key, uint64, bool) {
	if debugging {
		defer c.assertInvariants()
	}
	key, hits, ok := c.frequency.Min()
	if !ok {
		return key, 0, false
	}
	c.drop(c.index[key])
	return key, hits, true
}

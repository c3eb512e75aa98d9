package lrureap

import "go.uber.org/atomic"

type (
	// Stats is a snapshot of a cache's counters,
	// returned by [Cache.Stats].
	Stats struct {
		// Hits and Misses count [Cache.Get] results.
		Hits, Misses uint64
		// Evictions counts pages dropped to stay within capacity.
		Evictions uint64
		// Removals counts pages dropped by [Cache.Remove]
		// or [Cache.RecordRemoved].
		Removals uint64
		// Sweeps counts completed sweeps, whether or not they evicted.
		Sweeps uint64
		// SweepEvictions counts pages dropped by sweeps.
		SweepEvictions uint64
		// SweepsSkipped counts sweeps that could not lock the cache in time.
		SweepsSkipped uint64
	}
	// counters may be updated without holding the cache lock.
	counters struct {
		hits, misses,
		evictions, removals,
		sweeps, sweepEvictions,
		sweepsSkipped atomic.Uint64
	}
)

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Evictions:      c.evictions.Load(),
		Removals:       c.removals.Load(),
		Sweeps:         c.sweeps.Load(),
		SweepEvictions: c.sweepEvictions.Load(),
		SweepsSkipped:  c.sweepsSkipped.Load(),
	}
}

// HitRatio returns Hits / (Hits + Misses), or 0 without lookups.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Package lrureap implements a bounded [Cache] that evicts by recency (LRU)
// and is periodically reaped by frequency (approximating LFU).
//
// Admission and capacity eviction follow plain LRU. Independently, a
// background reaper wakes once per period and removes the page with the
// fewest hits, so pages that were touched once and never reused still age
// out even while the cache is below capacity.
//
// The following is a summary (intended for maintainers).
//
// Glossary and invariants:
//
//   - Page
//
//     A resident key, its value, and its position in the recency ring.
//
//   - Index
//
//     Maps each resident key to its page.
//
//   - Recency ring
//
//     Circular list of pages headed by the most recently used page.
//     The least recently used page is the head's predecessor.
//
//   - Frequency tracker
//
//     Maps each resident key to its hit count;
//     1 on admission, incremented on every [Cache.Get] hit.
//
//   - Index and ring are a bijection.
//
//   - Resident pages never exceed capacity.
//
//   - Tracked keys are exactly the resident keys.
//
//     Every path that drops a page (capacity eviction, [Cache.Remove],
//     [Cache.RecordRemoved], and sweeps) drops it from all three structures.
//
// Operations:
//
//   - Capacity eviction
//
//     [Cache.Set] of a new key into a full cache drops the ring tail.
//
//   - Sweep
//
//     Drops the tracked key with the lowest count.
//     Ties are broken by the lowest key, which is why keys must be [cmp.Ordered].
//
// Concurrency:
//
// The index, ring, and tracker are guarded by a single lock, never
// independently. Foreground calls wait for it; sweeps wait at most the
// configured sweep timeout, then skip the period and log an error.
// [Cache.Load] calls its fetch function without holding the lock,
// and does not cache the result if the backing store reported a
// change in the meantime.
//
// Building with the `lrureap_debug` tag asserts the invariants above
// after every mutation.
package lrureap

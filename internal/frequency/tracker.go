// Package frequency counts cache hits per key and
// reports the least frequently used key.
//
// Counters are kept in an indexed binary min-heap ordered by
// (count, key), so the minimum is available in constant time
// and every update costs O(log n).
// When several keys share the minimum count, the lowest key wins.
package frequency

import (
	"cmp"
	"container/heap"
	"iter"
)

type (
	counter[Key cmp.Ordered] struct {
		key   Key
		hits  uint64
		index int
	}
	counters[Key cmp.Ordered] []*counter[Key]
	// Tracker maps keys to access counters.
	// Concurrent access must be guarded by the caller.
	// The zero value is not usable; construct with [New].
	Tracker[Key cmp.Ordered] struct {
		index map[Key]*counter[Key]
		heap  counters[Key]
	}
)

// New creates an empty [Tracker].
func New[Key cmp.Ordered]() *Tracker[Key] {
	return &Tracker[Key]{
		index: make(map[Key]*counter[Key]),
	}
}

// Admit starts tracking key with a count of 1.
// A key that is already tracked is reset to 1.
func (t *Tracker[Key]) Admit(key Key) {
	if c, ok := t.index[key]; ok {
		c.hits = 1
		heap.Fix(&t.heap, c.index)
		return
	}
	t.push(key)
}

// Hit increments the count for key and returns it.
// An untracked key is initialized to 1.
func (t *Tracker[Key]) Hit(key Key) uint64 {
	c, ok := t.index[key]
	if !ok {
		return t.push(key).hits
	}
	c.hits++
	heap.Fix(&t.heap, c.index)
	return c.hits
}

func (t *Tracker[Key]) push(key Key) *counter[Key] {
	c := &counter[Key]{key: key, hits: 1}
	t.index[key] = c
	heap.Push(&t.heap, c)
	return c
}

// Drop stops tracking key, reporting if it was tracked.
func (t *Tracker[Key]) Drop(key Key) bool {
	c, ok := t.index[key]
	if !ok {
		return false
	}
	heap.Remove(&t.heap, c.index)
	delete(t.index, key)
	return true
}

// Min returns the key with the lowest count, and that count.
// Ties are broken by the lowest key.
// If nothing is tracked, ok is false.
func (t *Tracker[Key]) Min() (key Key, hits uint64, ok bool) {
	if len(t.heap) == 0 {
		return key, 0, false
	}
	least := t.heap[0]
	return least.key, least.hits, true
}

// Count returns the count for key, if tracked.
func (t *Tracker[Key]) Count(key Key) (uint64, bool) {
	if c, ok := t.index[key]; ok {
		return c.hits, true
	}
	return 0, false
}

// Len returns the number of tracked keys.
func (t *Tracker[Key]) Len() int { return len(t.heap) }

// Keys returns an iterator over the (unordered) tracked keys.
func (t *Tracker[Key]) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for key := range t.index {
			if !yield(key) {
				return
			}
		}
	}
}

func (cs counters[Key]) Len() int { return len(cs) }

func (cs counters[Key]) Less(i, j int) bool {
	a, b := cs[i], cs[j]
	if a.hits != b.hits {
		return a.hits < b.hits
	}
	return cmp.Less(a.key, b.key)
}

func (cs counters[Key]) Swap(i, j int) {
	cs[i], cs[j] = cs[j], cs[i]
	cs[i].index = i
	cs[j].index = j
}

func (cs *counters[Key]) Push(x any) {
	c := x.(*counter[Key])
	c.index = len(*cs)
	*cs = append(*cs, c)
}

func (cs *counters[Key]) Pop() any {
	var (
		old  = *cs
		last = len(old) - 1
		c    = old[last]
	)
	old[last] = nil
	c.index = -1
	*cs = old[:last]
	return c
}

package lrureap

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"time"

	"github.com/djdv/go-lrureap/internal/frequency"
	"github.com/djdv/go-lrureap/internal/ring"
	"golang.org/x/sync/semaphore"
)

type (
	page[Key comparable, Value any] = ring.Ring[Key, Value]
	// Cache is a fixed capacity LRU cache whose least frequently
	// used page can be periodically reaped (see [Cache.Start]).
	// It is safe for concurrent use.
	// Constructed by [New].
	Cache[Key cmp.Ordered, Value any] struct {
		// lock guards index, mru, frequency and generation as one unit.
		// A weighted semaphore is used so sweeps can give up waiting.
		lock         *semaphore.Weighted
		index        map[Key]*page[Key, Value]
		mru          *page[Key, Value]
		frequency    *frequency.Tracker[Key]
		logger       Logger
		stats        counters
		reaper       reaper
		sweepTimeout time.Duration
		capacity     int
		// generation counts change notifications from the
		// backing store (see [Cache.RecordAdded]).
		generation   uint64
	}
)

// MinimumCapacity defines the lowest value supported by [New].
const MinimumCapacity = 1

// New creates a [Cache] with the given capacity.
func New[Key cmp.Ordered, Value any](capacity int, options ...Option) (*Cache[Key, Value], error) {
	if capacity < MinimumCapacity {
		return nil, minCapacityError(capacity)
	}
	settings := defaultConfig()
	for _, apply := range options {
		if err := apply(settings); err != nil {
			return nil, err
		}
	}
	return &Cache[Key, Value]{
		lock:         semaphore.NewWeighted(1),
		index:        make(map[Key]*page[Key, Value], capacity),
		frequency:    frequency.New[Key](),
		logger:       settings.logger,
		sweepTimeout: settings.sweepTimeout,
		capacity:     capacity,
	}, nil
}

func (c *Cache[_, _]) acquire() {
	// Background is never done, so this cannot fail.
	_ = c.lock.Acquire(context.Background(), 1)
}

func (c *Cache[_, _]) release() { c.lock.Release(1) }

// Load returns the cached value for key (if resident). Otherwise, it calls fetch,
// inserts and returns the value on success.
// If fetch returns an error, the value is not cached.
// fetch is called without holding the cache lock, so concurrent
// misses for the same key may each call it.
// If the backing store reports a change (see [Cache.RecordAdded] and
// [Cache.RecordRemoved]) while fetch is running, the fetched value
// is returned but not cached, since it may already be stale.
func (c *Cache[Key, Value]) Load(key Key, fetch func() (Value, error)) (Value, error) {
	value, generation, ok := c.get(key)
	if ok {
		return value, nil
	}
	value, err := fetch()
	if err != nil {
		return value, err
	}
	c.acquire()
	var (
		victim  Key
		evicted bool
	)
	if c.generation == generation {
		victim, evicted = c.set(key, value)
	}
	c.release()
	c.logEviction(victim, evicted)
	return value, nil
}

// Get returns the Value for key if it is resident in the cache,
// marks it as the most recently used page, and counts the hit;
// otherwise it returns the zero value and false.
func (c *Cache[Key, Value]) Get(key Key) (Value, bool) {
	value, _, ok := c.get(key)
	return value, ok
}

// get also returns the generation observed under the lock.
func (c *Cache[Key, Value]) get(key Key) (Value, uint64, bool) {
	c.acquire()
	defer c.release()
	page, ok := c.index[key]
	if !ok {
		c.stats.misses.Inc()
		var zero Value
		return zero, c.generation, false
	}
	c.moveToFront(page)
	c.frequency.Hit(key)
	c.stats.hits.Inc()
	if debugging {
		c.assertInvariants()
	}
	return page.Value, c.generation, true
}

// Peek returns the Value for key without
// affecting its recency or frequency.
func (c *Cache[Key, Value]) Peek(key Key) (Value, bool) {
	c.acquire()
	defer c.release()
	if page, ok := c.index[key]; ok {
		return page.Value, true
	}
	var zero Value
	return zero, false
}

// Set inserts or updates key with value and
// marks it as the most recently used page.
// Inserting into a full cache evicts the least recently used page.
// Updating does not count as a hit.
func (c *Cache[Key, Value]) Set(key Key, value Value) {
	c.acquire()
	victim, evicted := c.set(key, value)
	c.release()
	c.logEviction(victim, evicted)
}

func (c *Cache[Key, _]) logEviction(victim Key, evicted bool) {
	if evicted {
		c.logger.Debug("evicted least recently used page",
			Field{Key: "key", Value: victim})
	}
}

func (c *Cache[Key, Value]) set(key Key, value Value) (victim Key, evicted bool) {
	if debugging {
		defer c.assertInvariants()
	}
	if page, ok := c.index[key]; ok {
		page.Value = value
		c.moveToFront(page)
		return victim, false
	}
	if len(c.index) == c.capacity {
		victim, evicted = c.evictLRU()
	}
	c.addNew(key, value)
	return victim, evicted
}

func (c *Cache[Key, Value]) addNew(key Key, value Value) {
	page := &page[Key, Value]{
		Key:   key,
		Value: value,
	}
	c.index[key] = page
	c.pushFront(page)
	c.frequency.Admit(key)
}

func (c *Cache[Key, _]) evictLRU() (Key, bool) {
	if c.mru == nil {
		var zero Key
		return zero, false
	}
	victim := c.lru()
	c.drop(victim)
	c.stats.evictions.Inc()
	return victim.Key, true
}

// drop removes the page from every structure.
func (c *Cache[Key, Value]) drop(page *page[Key, Value]) {
	c.unlink(page)
	delete(c.index, page.Key)
	c.frequency.Drop(page.Key)
}

// Remove drops key from the cache, reporting if it was resident.
// Removing an absent key does nothing.
func (c *Cache[Key, _]) Remove(key Key) bool {
	c.acquire()
	defer c.release()
	return c.remove(key)
}

func (c *Cache[Key, _]) remove(key Key) bool {
	page, ok := c.index[key]
	if !ok {
		return false
	}
	c.drop(page)
	c.stats.removals.Inc()
	if debugging {
		c.assertInvariants()
	}
	return true
}

// RecordAdded should be called when the backing store
// adds or replaces the record for key.
// A resident page has its value replaced in place,
// without affecting its recency or frequency.
// Absent keys are not admitted, and any [Cache.Load]
// in progress will not cache what it fetched.
func (c *Cache[Key, Value]) RecordAdded(key Key, value Value) {
	c.acquire()
	defer c.release()
	c.generation++
	if page, ok := c.index[key]; ok {
		page.Value = value
	}
}

// RecordRemoved should be called when the backing store
// deletes the record for key. Like [Cache.Remove], it drops
// the key, and any [Cache.Load] in progress will not
// cache what it fetched.
func (c *Cache[Key, _]) RecordRemoved(key Key) {
	c.acquire()
	defer c.release()
	c.generation++
	c.remove(key)
}

// Contains reports whether key is resident, without
// affecting its recency or frequency.
func (c *Cache[Key, _]) Contains(key Key) bool {
	c.acquire()
	defer c.release()
	_, ok := c.index[key]
	return ok
}

// Len returns the number of resident pages.
func (c *Cache[_, _]) Len() int {
	c.acquire()
	defer c.release()
	return len(c.index)
}

// Capacity returns the maximum number of resident pages.
func (c *Cache[_, _]) Capacity() int { return c.capacity }

// Frequency returns the number of hits counted for key since
// it was admitted (starting at 1), if it is resident.
func (c *Cache[Key, _]) Frequency(key Key) (uint64, bool) {
	c.acquire()
	defer c.release()
	return c.frequency.Count(key)
}

// Keys returns an iterator over the keys of resident pages,
// from most to least recently used.
// The keys are collected when Keys is called;
// later changes to the cache are not reflected.
func (c *Cache[Key, _]) Keys() iter.Seq[Key] {
	c.acquire()
	keys := make([]Key, 0, len(c.index))
	for page := range c.mru.All() {
		keys = append(keys, page.Key)
	}
	c.release()
	return slices.Values(keys)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[_, _]) Stats() Stats { return c.stats.snapshot() }

package lrureap_test

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
	"testing"

	"github.com/djdv/go-lrureap"
)

type testCache[Key comparable, Value any] interface {
	benchCache[Key, Value]
	Len() int
	Keys() iter.Seq[Key]
}

func TestCache(t *testing.T) {
	t.Run("invalid capacity", invalidCapacity)
	t.Run("invalid options", invalidOptions)
	t.Run("empty miss", emptyMiss)
	t.Run("basic", basic)
	t.Run("update", update)
	t.Run("minimum capacity", testMinimumCapacity)
	t.Run("capacity bounds", capacityBounds)
	t.Run("eviction order", evictionOrder)
	t.Run("hit promotes", hitPromotes)
	t.Run("remove", remove)
	t.Run("side effect free reads", sideEffectFreeReads)
	t.Run("frequency", frequencyCounts)
	t.Run("record hooks", recordHooks)
	t.Run("load", load)
	t.Run("stats", stats)
}

func invalidCapacity(t *testing.T) {
	invalidSizes := []int{-1, 0}
	for _, capacity := range invalidSizes {
		t.Run(fmt.Sprintf("%d", capacity), func(t *testing.T) {
			t.Parallel()
			cache, err := lrureap.New[int, int](capacity)
			if cache != nil || err == nil {
				t.Errorf(
					"New did not return an error when passed an invalid capacity: %d",
					capacity,
				)
			}
			if !errors.Is(err, lrureap.ErrInvalidCapacity) {
				t.Errorf("expected %v but got: %v", lrureap.ErrInvalidCapacity, err)
			}
		})
	}
}

func invalidOptions(t *testing.T) {
	for _, test := range []struct {
		name   string
		option lrureap.Option
	}{
		{"nil logger", lrureap.WithLogger(nil)},
		{"zero sweep timeout", lrureap.WithSweepTimeout(0)},
		{"negative sweep timeout", lrureap.WithSweepTimeout(-1)},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cache, err := lrureap.New[int, int](lrureap.MinimumCapacity, test.option)
			if cache != nil || !errors.Is(err, lrureap.ErrInvalidOption) {
				t.Errorf("expected %v but got: %v", lrureap.ErrInvalidOption, err)
			}
		})
	}
}

func emptyMiss(t *testing.T) {
	t.Parallel()
	const (
		capacity = lrureap.MinimumCapacity
		key      = "whatever"
		whyMiss  = "empty cache"
	)
	cache := newCache[string, int](t, capacity)
	mustMiss(t, cache, key, whyMiss)
	checkSize(t, cache, 0, "after miss")
}

func basic(t *testing.T) {
	const (
		key      = 1
		value    = 1
		capacity = lrureap.MinimumCapacity
		errCtx   = "after add"
	)
	cache := newCache[int, int](t, capacity)
	t.Run("add", func(t *testing.T) {
		cache.Set(key, value)
	})
	t.Run("get", func(t *testing.T) {
		checkGet(t, cache, key, value, errCtx)
	})
	const wantLength = 1
	wantKeys := []int{key}
	checkSize(t, cache, wantLength, errCtx)
	keysMatch(t, cache, wantKeys, errCtx)
}

func update(t *testing.T) {
	t.Parallel()
	const (
		capacity = 2
		key      = "shared"
		value    = 1
		updated  = 2
	)
	cache := newCache[string, int](t, capacity)
	t.Run("add", func(t *testing.T) {
		cache.Set(key, value)
		cache.Set("other", value)
		checkGet(t, cache, key, value, "just added")
	})
	t.Run("update", func(t *testing.T) {
		var (
			size     = cache.Len()
			hits, ok = cache.Frequency(key)
		)
		if !ok {
			t.Fatal("expected a frequency count for resident key")
		}
		cache.Set("other", updated)
		cache.Set(key, updated)
		checkSize(t, cache, size, "after updating page")
		keysInOrder(t, cache, []string{key, "other"}, "update must promote")
		checkFrequency(t, cache, key, hits, "update must not count as a hit")
		checkGet(t, cache, key, updated, "just updated")
	})
}

func testMinimumCapacity(t *testing.T) {
	t.Parallel()
	const capacity = lrureap.MinimumCapacity
	cache, err := lrureap.New[int, int](capacity)
	if err != nil {
		t.Error(err)
	}
	addIncrementingInts(cache, capacity+1)
	checkSize(t, cache, capacity, "added past capacity")
	checkKeyLength(t, cache, capacity, "added past capacity")
	mustGet(t, cache, capacity+1)
}

func capacityBounds(t *testing.T) {
	const (
		capacity = 4
		msg      = "added more than capacity"
	)
	for _, test := range []struct {
		name  string
		limit int
		want  int
	}{
		{"below capacity", capacity - 1, capacity - 1},
		{"at capacity", capacity, capacity},
		{"must evict", capacity * 3, capacity},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cache := newCache[int, int](t, capacity)
			addIncrementingInts(cache, test.limit)
			checkSize(t, cache, test.want, msg)
			checkKeyLength(t, cache, test.want, msg)
			// Distinct insertions evict oldest first.
			want := make([]int, 0, test.want)
			for key := test.limit; key > test.limit-test.want; key-- {
				want = append(want, key)
			}
			keysInOrder(t, cache, want, msg)
		})
	}
}

func evictionOrder(t *testing.T) {
	const capacity = 3
	cache := newCache[int, int](t, capacity)
	t.Run("fill cache", func(t *testing.T) {
		addIncrementingInts(cache, capacity)
	})
	t.Run("access page", func(t *testing.T) {
		// Promote 1; 2 becomes least recently used.
		mustGet(t, cache, 1)
	})
	t.Run("evict+add page", func(t *testing.T) {
		cache.Set(4, 4)
	})
	mustMiss(t, cache, 2, "least recently used page was evicted")
	keysInOrder(
		t, cache, []int{4, 1, 3},
		"unexpected keys after eviction",
	)
	checkFrequency(t, cache, 2, 0, "evicted page must not be tracked")
}

func hitPromotes(t *testing.T) {
	t.Parallel()
	const capacity = 4
	cache := newCache[int, int](t, capacity)
	addIncrementingInts(cache, capacity)
	for _, key := range []int{1, 3, 4, 2} {
		var (
			size = cache.Len()
			want = mruFirst(cache, key)
		)
		mustGet(t, cache, key)
		checkSize(t, cache, size, "after hit")
		keysInOrder(t, cache, want, "hit must promote")
	}
	// Tail promotion rotates the ring; check eviction follows suit.
	cache.Set(5, 5)
	mustMiss(t, cache, 1, "1 was least recently used")
}

func remove(t *testing.T) {
	t.Parallel()
	const capacity = 3
	cache := newCache[int, int](t, capacity)
	addIncrementingInts(cache, capacity)
	for _, key := range []int{2, 1, 3} {
		if !cache.Remove(key) {
			t.Fatalf("removing resident key %d reported absent", key)
		}
		mustMiss(t, cache, key, "removed")
		if cache.Remove(key) {
			t.Fatalf("second remove of %d reported a removal", key)
		}
		checkFrequency(t, cache, key, 0, "removed page must not be tracked")
	}
	checkSize(t, cache, 0, "after removing everything")
	keysMatch(t, cache, nil, "after removing everything")
	// Reuse after emptying.
	addIncrementingInts(cache, capacity+1)
	keysInOrder(t, cache, []int{4, 3, 2}, "after refill")
}

func sideEffectFreeReads(t *testing.T) {
	t.Parallel()
	const capacity = 2
	cache := newCache[int, int](t, capacity)
	addIncrementingInts(cache, capacity)
	if value, ok := cache.Peek(1); !ok || value != 1 {
		t.Fatalf("peek\n\tgot: %d %t\n\twant: %d %t", value, ok, 1, true)
	}
	if !cache.Contains(1) || cache.Contains(3) {
		t.Fatal("contains reported wrong residency")
	}
	checkFrequency(t, cache, 1, 1, "peek and contains must not count")
	cache.Set(3, 3)
	mustMiss(t, cache, 1, "peek and contains must not promote")
	if stats := cache.Stats(); stats.Hits != 0 {
		t.Fatalf("side effect free reads counted hits: %d", stats.Hits)
	}
}

func frequencyCounts(t *testing.T) {
	t.Parallel()
	cache := newCache[string, int](t, 2)
	cache.Set("a", 1)
	checkFrequency(t, cache, "a", 1, "on admission")
	for want := uint64(2); want <= 4; want++ {
		mustGet(t, cache, "a")
		checkFrequency(t, cache, "a", want, "after hit")
	}
	mustMiss(t, cache, "b", "never set")
	checkFrequency(t, cache, "b", 0, "miss must not track")
}

func recordHooks(t *testing.T) {
	t.Parallel()
	const capacity = 2
	cache := newCache[int, string](t, capacity)
	cache.Set(1, "one")
	cache.Set(2, "two")
	t.Run("added resident", func(t *testing.T) {
		cache.RecordAdded(1, "uno")
		if value, _ := cache.Peek(1); value != "uno" {
			t.Fatalf("resident value not refreshed: %q", value)
		}
		keysInOrder(t, cache, []int{2, 1}, "refresh must not promote")
		checkFrequency(t, cache, 1, 1, "refresh must not count")
	})
	t.Run("added absent", func(t *testing.T) {
		cache.RecordAdded(3, "three")
		if cache.Contains(3) {
			t.Fatal("absent key was admitted by a notification")
		}
	})
	t.Run("removed", func(t *testing.T) {
		cache.RecordRemoved(2)
		cache.RecordRemoved(2)
		mustMiss(t, cache, 2, "record removed")
		checkSize(t, cache, 1, "after record removed")
	})
}

func load(t *testing.T) {
	t.Parallel()
	cache := newCache[string, int](t, 2)
	var calls int
	fetch := func() (int, error) {
		calls++
		return 42, nil
	}
	for range 3 {
		got, err := cache.Load("answer", fetch)
		if err != nil {
			t.Fatal(err)
		}
		if got != 42 {
			t.Fatalf("load\n\tgot: %d\n\twant: %d", got, 42)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch calls\n\tgot: %d\n\twant: %d", calls, 1)
	}
	fetchErr := errors.New("unavailable")
	if _, err := cache.Load("broken", func() (int, error) {
		return 0, fetchErr
	}); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error but got: %v", err)
	}
	if cache.Contains("broken") {
		t.Fatal("failed fetch was cached")
	}
	for _, change := range []struct {
		name   string
		notify func()
	}{
		{"removed", func() { cache.RecordRemoved("stale") }},
		{"added", func() { cache.RecordAdded("stale", 2) }},
	} {
		got, err := cache.Load("stale", func() (int, error) {
			change.notify()
			return 1, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if got != 1 {
			t.Fatalf("load\n\tgot: %d\n\twant: %d", got, 1)
		}
		if cache.Contains("stale") {
			t.Fatalf("value fetched while the record was %s was cached", change.name)
		}
	}
}

func stats(t *testing.T) {
	t.Parallel()
	cache := newCache[int, int](t, 2)
	addIncrementingInts(cache, 3) // 1 eviction
	mustGet(t, cache, 3)
	mustMiss(t, cache, 1, "evicted")
	cache.Remove(2)
	want := lrureap.Stats{
		Hits:      1,
		Misses:    1,
		Evictions: 1,
		Removals:  1,
	}
	if got := cache.Stats(); got != want {
		t.Fatalf("unexpected stats\n\tgot: %+v\n\twant: %+v", got, want)
	}
	if got := want.HitRatio(); got != 0.5 {
		t.Fatalf("hit ratio\n\tgot: %v\n\twant: %v", got, 0.5)
	}
}

func newCache[
	Key cmp.Ordered, Value any,
](tb testing.TB, capacity int) *lrureap.Cache[Key, Value] {
	tb.Helper()
	cache, err := lrureap.New[Key, Value](capacity,
		lrureap.WithLogger(testLogger{tb}),
	)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(cache.Stop)
	return cache
}

func mustMiss[
	Key comparable,
	Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	key Key, why string,
) {
	tb.Helper()
	value, ok := cache.Get(key)
	if !ok {
		return
	}
	tb.Fatalf(
		"expected miss due to %s but got: %v %t",
		why, value, ok)
}

func mustGet[
	Key comparable, Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	key Key,
) Value {
	tb.Helper()
	if got, ok := cache.Get(key); ok {
		return got
	}
	tb.Fatalf("expected value from Get for key %v", key)
	var zero Value
	return zero
}

func mustGetMsg[
	Key comparable, Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	key Key, msg string,
) Value {
	tb.Helper()
	if got, ok := cache.Get(key); ok {
		return got
	}
	tb.Fatalf(
		"expected value from Get for key `%v` - %s",
		key, msg)
	var zero Value
	return zero
}

func checkGet[
	Key comparable, Value comparable,
](
	tb testing.TB,
	cache testCache[Key, Value],
	key Key, want Value, msg string,
) {
	tb.Helper()
	got := mustGetMsg(tb, cache, key, msg)
	if got == want {
		return
	}
	tb.Fatalf(
		"expected value to match"+
			"\n\tgot: %v"+
			"\n\twant: %v",
		got, want)
}

func checkSize[
	Key comparable, Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	size int, action string,
) {
	tb.Helper()
	got := cache.Len()
	if got == size {
		return
	}
	tb.Fatalf(
		"expected cache to be specific size %s"+
			"\n\tgot: %d"+
			"\n\twant: %d",
		action, got, size)
}

func checkKeyLength[
	Key comparable, Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	length int, action string,
) {
	tb.Helper()
	var got int
	for range cache.Keys() {
		got++
	}
	if got == length {
		return
	}
	tb.Fatalf(
		"expected cache to be specific size %s"+
			"\n\tgot: %d"+
			"\n\twant: %d",
		action, got, length)
}

func checkFrequency[
	Key cmp.Ordered, Value any,
](
	tb testing.TB,
	cache *lrureap.Cache[Key, Value],
	key Key, want uint64, msg string,
) {
	tb.Helper()
	got, ok := cache.Frequency(key)
	if want == 0 && ok {
		tb.Fatalf("%s: key %v is still tracked with %d hits", msg, key, got)
	}
	if got != want {
		tb.Fatalf(
			"unexpected frequency for key %v - %s"+
				"\n\tgot: %d"+
				"\n\twant: %d",
			key, msg, got, want)
	}
}

func addIncrementingInts(cache testCache[int, int], end int) {
	for i := range end {
		indexed := i + 1
		cache.Set(indexed, indexed)
	}
}

// mruFirst returns the expected order after key is promoted.
func mruFirst[Value any](cache testCache[int, Value], key int) []int {
	order := []int{key}
	for k := range cache.Keys() {
		if k != key {
			order = append(order, k)
		}
	}
	return order
}

func keysMatch[
	Key comparable,
	Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	want []Key, msg string,
) {
	tb.Helper()
	got := cache.Keys()
	if !keysEqualUnordered(want, got) {
		tb.Fatalf(
			"%s"+
				"want: %v"+
				"\ngot %v",
			msg, want, slices.Collect(got))
	}
}

func keysInOrder[
	Key comparable,
	Value any,
](
	tb testing.TB,
	cache testCache[Key, Value],
	want []Key, msg string,
) {
	tb.Helper()
	got := slices.Collect(cache.Keys())
	if !slices.Equal(got, want) {
		tb.Fatalf(
			"%s (most recent first)"+
				"\n\tgot: %v"+
				"\n\twant: %v",
			msg, got, want)
	}
}

func keysEqualUnordered[Key comparable](want []Key, seq iter.Seq[Key]) bool {
	counts := make(map[Key]int, len(want))
	for _, key := range want {
		counts[key]++
	}
	var seen int
	for key := range seq {
		if counts[key] == 0 {
			return false
		}
		counts[key]--
		seen++
	}
	return seen == len(want)
}

type testLogger struct{ tb testing.TB }

// Debug is dropped; benchmarks would otherwise log every eviction.
func (testLogger) Debug(string, ...lrureap.Field) {}

func (l testLogger) Info(msg string, fields ...lrureap.Field)  { l.log("INFO", msg, fields) }
func (l testLogger) Error(msg string, fields ...lrureap.Field) { l.log("ERROR", msg, fields) }

func (l testLogger) log(level, msg string, fields []lrureap.Field) {
	if _, benchmark := l.tb.(*testing.B); benchmark {
		return
	}
	l.tb.Logf("%s: %s %v", level, msg, fields)
}

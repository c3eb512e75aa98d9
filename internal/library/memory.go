package library

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type (
	// shard is a single partition of the catalog with its own lock.
	shard struct {
		mu    sync.RWMutex
		books map[int]Book
	}
	// Memory is an in-memory [Catalog] split into shards
	// so concurrent lookups of different books rarely contend.
	Memory struct {
		observers
		shards    []shard
		shardMask uint64
	}
	// MemoryOption configures a [Memory] catalog.
	MemoryOption func(*Memory)
)

// DefaultShardCount is used by [NewMemory] unless [WithShardCount] is given.
const DefaultShardCount = 16

// WithShardCount sets the number of shards for the catalog.
// The number is rounded up to the next power of 2.
func WithShardCount(count int) MemoryOption {
	return func(m *Memory) {
		if count > 0 {
			count = nextPowerOf2(count)
			m.shards = make([]shard, count)
			m.shardMask = uint64(count - 1)
		}
	}
}

// NewMemory creates an empty in-memory catalog.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		shards:    make([]shard, DefaultShardCount),
		shardMask: DefaultShardCount - 1,
	}
	for _, opt := range opts {
		opt(m)
	}
	for i := range m.shards {
		m.shards[i].books = make(map[int]Book)
	}
	return m
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// shardIndex hashes the id to pick its shard.
func (m *Memory) shardIndex(id int) uint64 {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(id))
	return xxhash.Sum64(key[:]) & m.shardMask
}

func (m *Memory) shardFor(id int) *shard {
	return &m.shards[m.shardIndex(id)]
}

// Lookup implements [Catalog]. It never fails.
func (m *Memory) Lookup(_ context.Context, id int) (Book, bool, error) {
	sh := m.shardFor(id)
	sh.mu.RLock()
	book, ok := sh.books[id]
	sh.mu.RUnlock()
	return book, ok, nil
}

// Add stores or replaces the book and notifies observers.
func (m *Memory) Add(book Book) error {
	if err := book.Validate(); err != nil {
		return err
	}
	sh := m.shardFor(book.ID)
	sh.mu.Lock()
	sh.books[book.ID] = book
	sh.mu.Unlock()
	m.added(book)
	return nil
}

// AddAll stores every book, stopping at the first invalid one.
func (m *Memory) AddAll(books []Book) error {
	for _, book := range books {
		if err := m.Add(book); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the book for id, reporting if it was present.
// Observers are only notified of actual removals.
func (m *Memory) Remove(id int) bool {
	sh := m.shardFor(id)
	sh.mu.Lock()
	_, ok := sh.books[id]
	delete(sh.books, id)
	sh.mu.Unlock()
	if ok {
		m.removed(id)
	}
	return ok
}

// Len returns the number of books in the catalog.
func (m *Memory) Len() int {
	var n int
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.RLock()
		n += len(sh.books)
		sh.mu.RUnlock()
	}
	return n
}

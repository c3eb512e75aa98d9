package library

import (
	"context"
	"sync"
)

type (
	// Catalog is the backing store consulted on cache misses.
	Catalog interface {
		// Lookup returns the book for id.
		// A missing book is reported by ok, not by err.
		Lookup(ctx context.Context, id int) (book Book, ok bool, err error)
	}
	// Observer is notified when a catalog changes.
	// [lrureap.Cache] satisfies it for int keys and [Book] values.
	Observer interface {
		RecordAdded(id int, book Book)
		RecordRemoved(id int)
	}
	observers struct {
		mu   sync.RWMutex
		list []Observer
	}
)

// AddObserver registers an observer for catalog changes.
func (o *observers) AddObserver(observer Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, observer)
}

func (o *observers) added(book Book) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, observer := range o.list {
		observer.RecordAdded(book.ID, book)
	}
}

func (o *observers) removed(id int) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, observer := range o.list {
		observer.RecordRemoved(id)
	}
}

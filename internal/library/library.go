package library

import (
	"context"
	"errors"

	"github.com/djdv/go-lrureap"
)

type (
	// Library answers book lookups from a cache in front of a [Catalog].
	Library struct {
		cache   *lrureap.Cache[int, Book]
		catalog Catalog
	}
	// Source tells where [Library.Find] found a book.
	Source int
)

const (
	// NotFound means neither the cache nor the catalog had the book.
	NotFound Source = iota
	// FromCache means the book was resident in the cache.
	FromCache
	// FromCatalog means the book was fetched from the catalog.
	// It is cached unless the catalog changed during the lookup.
	FromCatalog
)

const errNotCataloged = constError("book is not in the catalog")

func (s Source) String() string {
	switch s {
	case NotFound:
		return "not found"
	case FromCache:
		return "cache"
	case FromCatalog:
		return "catalog"
	default:
		return "unknown"
	}
}

// New creates a library serving books from catalog through cache.
func New(cache *lrureap.Cache[int, Book], catalog Catalog) *Library {
	return &Library{
		cache:   cache,
		catalog: catalog,
	}
}

// Find returns the book for id.
// Cache misses consult the catalog without holding the cache lock;
// books found there are admitted to the cache, unless the catalog
// reported a change while the lookup was in flight.
// Catalog errors are returned and nothing is cached.
func (l *Library) Find(ctx context.Context, id int) (Book, Source, error) {
	fetched := false
	book, err := l.cache.Load(id, func() (Book, error) {
		fetched = true
		book, ok, err := l.catalog.Lookup(ctx, id)
		if err == nil && !ok {
			err = errNotCataloged
		}
		return book, err
	})
	switch {
	case errors.Is(err, errNotCataloged):
		return Book{}, NotFound, nil
	case err != nil:
		return Book{}, NotFound, err
	case fetched:
		return book, FromCatalog, nil
	default:
		return book, FromCache, nil
	}
}

// Cache returns the cache used by the library.
func (l *Library) Cache() *lrureap.Cache[int, Book] { return l.cache }

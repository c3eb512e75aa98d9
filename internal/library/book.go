// Package library holds the book records served through the cache,
// the catalogs they are loaded from, and the read-through [Library].
package library

import (
	"fmt"
	"strings"
)

// Book is a catalog record.
type Book struct {
	ID     int
	Title  string
	Author string
	ISBN   string
	Year   int
}

// ErrInvalidRecord is returned when a [Book] fails [Book.Validate].
const ErrInvalidRecord = constError("invalid record")

type constError string

func (errStr constError) Error() string { return string(errStr) }

// Validate reports whether the book can be stored in a catalog.
func (b Book) Validate() error {
	switch {
	case b.ID < 0:
		return fmt.Errorf("%w: id must be >=0 but was %d", ErrInvalidRecord, b.ID)
	case strings.TrimSpace(b.Title) == "":
		return fmt.Errorf("%w: book %d has no title", ErrInvalidRecord, b.ID)
	}
	return nil
}

func (b Book) String() string {
	return fmt.Sprintf("%s by %s", b.Title, b.Author)
}

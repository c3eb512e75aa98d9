package library

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces book hashes, e.g. `book:42`.
const DefaultRedisPrefix = "book:"

// Redis is a [Catalog] storing each book as a Redis hash.
type Redis struct {
	observers
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a catalog using client.
// An empty prefix selects [DefaultRedisPrefix].
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) key(id int) string {
	return r.prefix + strconv.Itoa(id)
}

// Lookup implements [Catalog].
func (r *Redis) Lookup(ctx context.Context, id int) (Book, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return Book{}, false, fmt.Errorf("lookup book %d: %w", id, err)
	}
	if len(fields) == 0 {
		return Book{}, false, nil
	}
	year, err := strconv.Atoi(fields["year"])
	if err != nil {
		return Book{}, false, fmt.Errorf("%w: book %d year: %w",
			ErrInvalidRecord, id, err)
	}
	return Book{
		ID:     id,
		Title:  fields["title"],
		Author: fields["author"],
		ISBN:   fields["isbn"],
		Year:   year,
	}, true, nil
}

// Add stores or replaces the book and notifies observers.
func (r *Redis) Add(ctx context.Context, book Book) error {
	if err := book.Validate(); err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key(book.ID),
		"title", book.Title,
		"author", book.Author,
		"isbn", book.ISBN,
		"year", book.Year,
	).Err(); err != nil {
		return fmt.Errorf("store book %d: %w", book.ID, err)
	}
	r.added(book)
	return nil
}

// Remove deletes the book for id, reporting if it was present.
func (r *Redis) Remove(ctx context.Context, id int) (bool, error) {
	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("remove book %d: %w", id, err)
	}
	if deleted == 0 {
		return false, nil
	}
	r.removed(id)
	return true, nil
}

// Package cache provides a Redis-backed read-through cache for the book
// catalog. Misses and transport errors are both reported as misses so the
// catalog can always fall through to upstream or local storage.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
)

// DefaultTTL bounds how long cached catalog responses are served.
const DefaultTTL = 10 * time.Minute

var _ book.Cache = (*BookCache)(nil)

// NewClient connects to Redis using a URL like redis://host:6379/0 and
// verifies the connection with a ping.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// BookCache caches book lookups and search results under namespaced keys.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache returns a BookCache with the given TTL. A non-positive TTL
// falls back to DefaultTTL.
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BookCache{client: client, ttl: ttl}
}

// GetBooks returns a cached book list for the key, reporting a miss on any
// error.
func (c *BookCache) GetBooks(ctx context.Context, key string) ([]book.Book, bool) {
	data, err := c.client.Get(ctx, "books:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var books []book.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, false
	}
	return books, true
}

// SetBooks caches a book list under the key. Failures are dropped.
func (c *BookCache) SetBooks(ctx context.Context, key string, books []book.Book) {
	data, err := json.Marshal(books)
	if err != nil {
		return
	}
	c.client.Set(ctx, "books:"+key, data, c.ttl)
}

// GetBook returns a cached single book, reporting a miss on any error.
func (c *BookCache) GetBook(ctx context.Context, id string) (*book.Book, bool) {
	data, err := c.client.Get(ctx, "book:"+id).Bytes()
	if err != nil {
		return nil, false
	}
	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false
	}
	return &b, true
}

// SetBook caches a single book. Failures are dropped.
func (c *BookCache) SetBook(ctx context.Context, b *book.Book) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	c.client.Set(ctx, "book:"+b.ID, data, c.ttl)
}

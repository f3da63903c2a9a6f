package book

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUpstream struct {
	books    []Book
	err      error
	searches int
}

func (m *mockUpstream) Search(_ context.Context, _ string, _ int) ([]Book, error) {
	m.searches++
	if m.err != nil {
		return nil, m.err
	}
	return m.books, nil
}

func (m *mockUpstream) Get(_ context.Context, id string) (*Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.books {
		if m.books[i].ID == id {
			return &m.books[i], nil
		}
	}
	return nil, ErrNotFound
}

type mockCache struct {
	lists map[string][]Book
	books map[string]*Book
	sets  int
}

func newMockCache() *mockCache {
	return &mockCache{
		lists: make(map[string][]Book),
		books: make(map[string]*Book),
	}
}

func (m *mockCache) GetBooks(_ context.Context, key string) ([]Book, bool) {
	books, ok := m.lists[key]
	return books, ok
}

func (m *mockCache) SetBooks(_ context.Context, key string, books []Book) {
	m.sets++
	m.lists[key] = books
}

func (m *mockCache) GetBook(_ context.Context, id string) (*Book, bool) {
	b, ok := m.books[id]
	return b, ok
}

func (m *mockCache) SetBook(_ context.Context, b *Book) {
	m.books[b.ID] = b
}

type mockLocal struct {
	books []Book
	err   error
}

func (m *mockLocal) List(_ context.Context, limit int) ([]Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.books) {
		return m.books[:limit], nil
	}
	return m.books, nil
}

func (m *mockLocal) Search(_ context.Context, _ string, limit int) ([]Book, error) {
	return m.List(context.Background(), limit)
}

func (m *mockLocal) GetByID(_ context.Context, id string) (*Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.books {
		if m.books[i].ID == id {
			return &m.books[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockLocal) Put(_ context.Context, books []Book) error {
	m.books = append(m.books, books...)
	return nil
}

func sampleBooks(n int) []Book {
	books := make([]Book, 0, n)
	for i := range n {
		books = append(books, Book{
			ID:    string(rune('a' + i)),
			Title: "Book " + string(rune('A'+i)),
			Price: decimal.NewFromInt(int64(10 + i)),
		})
	}
	return books
}

func TestSearch_CacheHitSkipsUpstream(t *testing.T) {
	upstream := &mockUpstream{}
	cache := newMockCache()
	cache.lists["dune"] = sampleBooks(3)
	svc := NewService(upstream, cache, &mockLocal{}, zap.NewNop())

	books, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)

	assert.Len(t, books, 3)
	assert.Zero(t, upstream.searches)
}

func TestSearch_CacheMissPopulatesCache(t *testing.T) {
	upstream := &mockUpstream{books: sampleBooks(2)}
	cache := newMockCache()
	svc := NewService(upstream, cache, &mockLocal{}, zap.NewNop())

	books, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)

	assert.Len(t, books, 2)
	assert.Equal(t, 1, upstream.searches)
	cached, ok := cache.lists["dune"]
	require.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestSearch_UpstreamFailureFallsBackToLocal(t *testing.T) {
	upstream := &mockUpstream{err: errors.New("volumes api down")}
	local := &mockLocal{books: sampleBooks(4)}
	cache := newMockCache()
	svc := NewService(upstream, cache, local, zap.NewNop())

	books, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)

	assert.Len(t, books, 4)
	assert.Zero(t, cache.sets, "fallback results are not cached")
}

func TestSearch_BothSourcesFailing(t *testing.T) {
	upstream := &mockUpstream{err: errors.New("volumes api down")}
	local := &mockLocal{err: errors.New("db down")}
	svc := NewService(upstream, newMockCache(), local, zap.NewNop())

	_, err := svc.Search(context.Background(), "dune")
	require.Error(t, err)
}

func TestRandom_SamplesAtMostTwenty(t *testing.T) {
	upstream := &mockUpstream{books: sampleBooks(26)}
	svc := NewService(upstream, newMockCache(), &mockLocal{}, zap.NewNop())

	books, err := svc.Random(context.Background())
	require.NoError(t, err)

	assert.Len(t, books, randomSampleSize)
}

func TestRandom_SmallCatalogReturnedWhole(t *testing.T) {
	upstream := &mockUpstream{books: sampleBooks(5)}
	svc := NewService(upstream, newMockCache(), &mockLocal{}, zap.NewNop())

	books, err := svc.Random(context.Background())
	require.NoError(t, err)

	assert.Len(t, books, 5)
}

func TestRandom_ServesFromCachedListing(t *testing.T) {
	upstream := &mockUpstream{}
	cache := newMockCache()
	cache.lists[randomQuery] = sampleBooks(3)
	svc := NewService(upstream, cache, &mockLocal{}, zap.NewNop())

	books, err := svc.Random(context.Background())
	require.NoError(t, err)

	assert.Len(t, books, 3)
	assert.Zero(t, upstream.searches)
}

func TestGet_CacheThenUpstream(t *testing.T) {
	upstream := &mockUpstream{books: sampleBooks(2)}
	cache := newMockCache()
	svc := NewService(upstream, cache, &mockLocal{}, zap.NewNop())

	b, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Book A", b.Title)

	// Second read comes from the cache.
	cached, ok := cache.books["a"]
	require.True(t, ok)
	assert.Equal(t, b.Title, cached.Title)
}

func TestGet_NotFound(t *testing.T) {
	upstream := &mockUpstream{books: sampleBooks(1)}
	svc := NewService(upstream, newMockCache(), &mockLocal{}, zap.NewNop())

	_, err := svc.Get(context.Background(), "zzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGet_UpstreamFailureFallsBackToLocal(t *testing.T) {
	upstream := &mockUpstream{err: errors.New("volumes api down")}
	local := &mockLocal{books: sampleBooks(2)}
	svc := NewService(upstream, newMockCache(), local, zap.NewNop())

	b, err := svc.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "Book B", b.Title)
}

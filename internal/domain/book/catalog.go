package book

import (
	"context"
	"math/rand"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Upstream is the volumes API surface the catalog consumes.
type Upstream interface {
	Search(ctx context.Context, q string, maxResults int) ([]Book, error)
	Get(ctx context.Context, id string) (*Book, error)
}

// Cache stores catalog responses keyed by query. A miss is reported with
// ok=false, never an error; cache failures must not break catalog reads.
type Cache interface {
	GetBooks(ctx context.Context, key string) ([]Book, bool)
	SetBooks(ctx context.Context, key string, books []Book)
	GetBook(ctx context.Context, id string) (*Book, bool)
	SetBook(ctx context.Context, b *Book)
}

// Defaults of the random sample endpoint.
const (
	randomQuery       = "fiction"
	randomFetchSize   = 40
	randomSampleSize  = 20
	fallbackFetchSize = 40
)

// Service answers catalog reads: cache first, then upstream, then the local
// fallback table when the upstream is unreachable.
type Service struct {
	upstream Upstream
	cache    Cache
	local    Repository
	lg       *zap.Logger
}

// NewService creates a catalog Service.
func NewService(upstream Upstream, cache Cache, local Repository, lg *zap.Logger) *Service {
	return &Service{
		upstream: upstream,
		cache:    cache,
		local:    local,
		lg:       lg,
	}
}

// Random returns a shuffled sample of the default browse listing. The
// sample itself is never cached so repeat visits see different books, but it
// draws from the cached fiction listing when available.
func (s *Service) Random(ctx context.Context) ([]Book, error) {
	books, ok := s.cache.GetBooks(ctx, randomQuery)
	if !ok {
		var err error
		books, err = s.upstream.Search(ctx, randomQuery, randomFetchSize)
		if err != nil {
			s.lg.Warn("upstream search failed, using local catalog", zap.Error(err))
			books, err = s.local.List(ctx, randomFetchSize)
			if err != nil {
				return nil, errors.Wrap(err, "local catalog")
			}
		} else {
			s.cache.SetBooks(ctx, randomQuery, books)
		}
	}

	shuffled := make([]Book, len(books))
	copy(shuffled, books)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > randomSampleSize {
		shuffled = shuffled[:randomSampleSize]
	}
	return shuffled, nil
}

// Search returns volumes matching q, served from cache when possible.
func (s *Service) Search(ctx context.Context, q string) ([]Book, error) {
	if books, ok := s.cache.GetBooks(ctx, q); ok {
		return books, nil
	}

	books, err := s.upstream.Search(ctx, q, 0)
	if err != nil {
		s.lg.Warn("upstream search failed, using local catalog",
			zap.String("query", q),
			zap.Error(err),
		)
		books, err = s.local.Search(ctx, q, fallbackFetchSize)
		if err != nil {
			return nil, errors.Wrap(err, "local catalog")
		}
		return books, nil
	}

	s.cache.SetBooks(ctx, q, books)
	return books, nil
}

// Get returns a single book by ID.
func (s *Service) Get(ctx context.Context, id string) (*Book, error) {
	if b, ok := s.cache.GetBook(ctx, id); ok {
		return b, nil
	}

	b, err := s.upstream.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.lg.Warn("upstream get failed, using local catalog",
			zap.String("id", id),
			zap.Error(err),
		)
		return s.local.GetByID(ctx, id)
	}

	s.cache.SetBook(ctx, b)
	return b, nil
}

// Package book serves the catalog: book metadata comes from an upstream
// volumes API (cached in Redis, with a local table as fallback), while the
// price is a deterministic value derived from the volume ID. The upstream
// carries no monetary data, so the derivation acts as the pricing oracle and
// must stay stable across calls.
package book

import (
	"context"
	"math/rand"
	"unicode/utf16"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no book matches the requested ID.
var ErrNotFound = errors.New("book not found")

// Book is one catalog entry as exposed over the API.
type Book struct {
	ID          string
	Title       string
	Authors     []string
	Price       decimal.Decimal
	Description string
	Thumbnail   string
	Stock       int
}

// Price bounds of the derivation.
const (
	minPrice = 10
	maxPrice = 100
)

// PriceFromID derives the display price from the volume ID: a djb2-style
// hash over UTF-16 code units with 32-bit wraparound, folded into the
// [minPrice, maxPrice] range. Deterministic per ID, so a book keeps its
// price across calls.
func PriceFromID(id string) decimal.Decimal {
	var hash int32
	for _, u := range utf16.Encode([]rune(id)) {
		hash = int32(u) + (hash << 5) - hash
	}
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return decimal.NewFromInt(h%(maxPrice-minPrice+1) + minPrice)
}

// randomStock mimics the upstream's absent inventory data with a value in
// [1, 20].
func randomStock() int {
	return rand.Intn(20) + 1
}

// Repository defines the local catalog fallback store.
type Repository interface {
	List(ctx context.Context, limit int) ([]Book, error)
	Search(ctx context.Context, query string, limit int) ([]Book, error)
	GetByID(ctx context.Context, id string) (*Book, error)
	Put(ctx context.Context, books []Book) error
}

// Package history defines the append-only checkout history: one persisted
// row per book/quantity purchased by one email at one timestamp. There is no
// order aggregate; consumers reconstruct orders by timestamp proximity.
package history

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a single recorded line-item purchase.
type Entry struct {
	ID         int64
	Email      string
	BookISBN   string
	TotalPrice decimal.Decimal
	Qty        int
	CheckoutAt time.Time
}

// Repository defines persistence for checkout history rows. Append treats
// every entry as a fresh insert: duplicate submissions are valid and
// indistinguishable from two genuine purchases. ListByEmail returns entries
// sorted by checkout time, newest first.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByEmail(ctx context.Context, email string) ([]Entry, error)
}

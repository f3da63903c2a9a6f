package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookshelf-backend/internal/domain/history"
)

var _ history.Repository = (*HistoryRepository)(nil)

// HistoryRepository is the append-only checkout ledger backed by PostgreSQL.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository returns a HistoryRepository using the pool.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Append records a single checkout line, filling in the assigned ID.
func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO checkout_history (email, book_isbn, total_price, qty, checkout_date_and_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.Email, e.BookISBN, e.TotalPrice, e.Qty, e.CheckoutAt,
	).Scan(&e.ID)
	if err != nil {
		return errors.Wrapf(err, "appending history for %q", e.Email)
	}
	return nil
}

// ListByEmail returns all entries for an email, newest first.
func (r *HistoryRepository) ListByEmail(ctx context.Context, email string) ([]history.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, book_isbn, total_price, qty, checkout_date_and_time
		 FROM checkout_history
		 WHERE email = $1
		 ORDER BY checkout_date_and_time DESC, id DESC`,
		email,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "listing history for %q", email)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (history.Entry, error) {
		var e history.Entry
		err := row.Scan(&e.ID, &e.Email, &e.BookISBN, &e.TotalPrice, &e.Qty, &e.CheckoutAt)
		return e, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "collecting history rows")
	}
	return entries, nil
}

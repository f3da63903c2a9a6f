package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookshelf-backend/internal/domain/shipping"
)

var _ shipping.Repository = (*ShippingRepository)(nil)

// ShippingRepository persists shipping addresses in PostgreSQL, one row per
// user keyed by email.
type ShippingRepository struct {
	pool *pgxpool.Pool
}

// NewShippingRepository returns a ShippingRepository using the pool.
func NewShippingRepository(pool *pgxpool.Pool) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

// Get returns the shipping info for an email, or shipping.ErrNotFound.
func (r *ShippingRepository) Get(ctx context.Context, email string) (*shipping.Info, error) {
	var info shipping.Info
	err := r.pool.QueryRow(ctx,
		`SELECT email, address, city, state, postal_code, country
		 FROM shipping WHERE email = $1`,
		email,
	).Scan(&info.Email, &info.Address, &info.City, &info.State, &info.PostalCode, &info.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shipping.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting shipping for %q", email)
	}
	return &info, nil
}

// Create inserts a new shipping record. Returns shipping.ErrDuplicate when a
// record already exists for the email.
func (r *ShippingRepository) Create(ctx context.Context, info shipping.Info) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO shipping (email, address, city, state, postal_code, country)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		info.Email, info.Address, info.City, info.State, info.PostalCode, info.Country,
	)
	if isUniqueViolation(err) {
		return shipping.ErrDuplicate
	}
	if err != nil {
		return errors.Wrapf(err, "creating shipping for %q", info.Email)
	}
	return nil
}

// Update replaces an existing record, or returns shipping.ErrNotFound.
func (r *ShippingRepository) Update(ctx context.Context, info shipping.Info) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shipping
		 SET address = $2, city = $3, state = $4, postal_code = $5, country = $6
		 WHERE email = $1`,
		info.Email, info.Address, info.City, info.State, info.PostalCode, info.Country,
	)
	if err != nil {
		return errors.Wrapf(err, "updating shipping for %q", info.Email)
	}
	if tag.RowsAffected() == 0 {
		return shipping.ErrNotFound
	}
	return nil
}

// Upsert creates or replaces the record for the email.
func (r *ShippingRepository) Upsert(ctx context.Context, info shipping.Info) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO shipping (email, address, city, state, postal_code, country)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE SET
		     address = EXCLUDED.address,
		     city = EXCLUDED.city,
		     state = EXCLUDED.state,
		     postal_code = EXCLUDED.postal_code,
		     country = EXCLUDED.country`,
		info.Email, info.Address, info.City, info.State, info.PostalCode, info.Country,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting shipping for %q", info.Email)
	}
	return nil
}

// Delete removes the record, or returns shipping.ErrNotFound.
func (r *ShippingRepository) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM shipping WHERE email = $1`, email,
	)
	if err != nil {
		return errors.Wrapf(err, "deleting shipping for %q", email)
	}
	if tag.RowsAffected() == 0 {
		return shipping.ErrNotFound
	}
	return nil
}

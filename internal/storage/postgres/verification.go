package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookshelf-backend/internal/domain/user"
)

var _ user.VerificationRepository = (*VerificationRepository)(nil)

// VerificationRepository stores pending verification codes in PostgreSQL.
type VerificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository returns a VerificationRepository using the pool.
func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

// Upsert creates or replaces the pending code for an email.
func (r *VerificationRepository) Upsert(ctx context.Context, email, code string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_verifications (email, code) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, created_at = now()`,
		email, code,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting code for %q", email)
	}
	return nil
}

// Find returns the pending code for an email, or user.ErrCodeNotFound.
func (r *VerificationRepository) Find(ctx context.Context, email string) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx,
		`SELECT code FROM email_verifications WHERE email = $1`,
		email,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", user.ErrCodeNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "finding code for %q", email)
	}
	return code, nil
}

// Delete removes the pending code, marking the email verified.
func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM email_verifications WHERE email = $1`, email,
	)
	if err != nil {
		return errors.Wrapf(err, "deleting code for %q", email)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrCodeNotFound
	}
	return nil
}

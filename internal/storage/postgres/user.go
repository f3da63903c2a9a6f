package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookshelf-backend/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. It returns user.ErrDuplicate when the email is
// already registered.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (email, name, phone_number, password) VALUES ($1, $2, $3, $4)`,
		u.Email, u.Name, u.PhoneNumber, u.Password,
	)
	if isUniqueViolation(err) {
		return user.ErrDuplicate
	}
	if err != nil {
		return errors.Wrapf(err, "creating user %q", u.Email)
	}
	return nil
}

// FindByEmail returns a user by email, or user.ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx,
		`SELECT email, name, phone_number, password, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.Email, &u.Name, &u.PhoneNumber, &u.Password, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding user %q", email)
	}
	return &u, nil
}

// List returns safe profile fields for all users.
func (r *UserRepository) List(ctx context.Context) ([]user.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT email, name, phone_number FROM users ORDER BY email`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing users")
	}
	defer rows.Close()

	var profiles []user.Profile
	for rows.Next() {
		var p user.Profile
		if err := rows.Scan(&p.Email, &p.Name, &p.PhoneNumber); err != nil {
			return nil, errors.Wrap(err, "scanning user")
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update rewrites the mutable fields of a user keyed by email.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, phone_number = $3, password = $4 WHERE email = $1`,
		u.Email, u.Name, u.PhoneNumber, u.Password,
	)
	if err != nil {
		return errors.Wrapf(err, "updating user %q", u.Email)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Delete removes a user by email.
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return errors.Wrapf(err, "deleting user %q", email)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

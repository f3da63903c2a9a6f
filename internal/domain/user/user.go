// Package user implements accounts: registration with hashed passwords,
// login gated on email verification, JWT token pairs, and profile management.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("email already exists")
)

// User is one account. Password holds the bcrypt hash, never the plaintext.
type User struct {
	Email       string
	Name        string
	PhoneNumber string
	Password    string
	CreatedAt   time.Time
}

// Profile is the safe subset of a user exposed over the API.
type Profile struct {
	Email       string
	Name        string
	PhoneNumber string
}

// Profile returns the user's API-safe fields.
func (u *User) Profile() Profile {
	return Profile{
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
	}
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]Profile, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, email string) error
}

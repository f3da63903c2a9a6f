// Package shipping holds the per-user shipping profile: free-text address
// fields keyed by email, persisted server-side.
package shipping

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound  = errors.New("shipping info not found")
	ErrDuplicate = errors.New("shipping info for this email already exists")
)

// Info is one user's shipping profile. All fields are free text; the only
// normalization enforced is non-emptiness.
type Info struct {
	Email      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// MissingFieldError reports the first required field that was empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// Validate checks that every required field is present.
func (i Info) Validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"email", i.Email},
		{"address", i.Address},
		{"city", i.City},
		{"state", i.State},
		{"postal_code", i.PostalCode},
		{"country", i.Country},
	} {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}

// Repository defines persistence operations for shipping profiles.
type Repository interface {
	Get(ctx context.Context, email string) (*Info, error)
	Create(ctx context.Context, info Info) error
	Update(ctx context.Context, info Info) error
	Upsert(ctx context.Context, info Info) error
	Delete(ctx context.Context, email string) error
}

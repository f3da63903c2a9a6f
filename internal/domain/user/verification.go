package user

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/go-faster/errors"
)

// Verification errors.
var (
	ErrCodeNotFound = errors.New("verification code not found")
	ErrCodeMismatch = errors.New("invalid verification code")
)

// VerificationRepository stores pending email verification codes. The
// presence of a row means the email is NOT verified yet; verification
// deletes the row.
type VerificationRepository interface {
	Upsert(ctx context.Context, email, code string) error
	Find(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// Mailer delivers verification codes to users.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// GenerateCode returns a random six digit verification code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, "generate code")
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

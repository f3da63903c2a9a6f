package user

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult mirrors the wire contract of the login endpoint: failed
// credentials are a result, not an error, and a pending verification record
// blocks login without revealing anything else.
type LoginResult struct {
	Successful        bool
	Message           string
	NeedsVerification bool
	Email             string
	Name              string
	Tokens            TokenPair
}

// Service implements account flows over the repositories.
type Service struct {
	users  Repository
	codes  VerificationRepository
	mailer Mailer
	tokens *TokenIssuer
	lg     *zap.Logger
}

// NewService creates a user Service.
func NewService(
	users Repository,
	codes VerificationRepository,
	mailer Mailer,
	tokens *TokenIssuer,
	lg *zap.Logger,
) *Service {
	return &Service{
		users:  users,
		codes:  codes,
		mailer: mailer,
		tokens: tokens,
		lg:     lg,
	}
}

// Register creates an account with a bcrypt-hashed password and issues a
// verification code. Code delivery is best-effort: the account exists either
// way and the code can be re-requested.
func (s *Service) Register(ctx context.Context, name, email, phone, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Email:       email,
		Name:        name,
		PhoneNumber: phone,
		Password:    string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.RequestVerification(ctx, email); err != nil {
		s.lg.Warn("verification code not issued",
			zap.String("email", email),
			zap.Error(err),
		)
	}
	return u, nil
}

// Login checks credentials and the verification gate. Unknown users and bad
// passwords return an unsuccessful result with a message, not an error;
// errors are reserved for infrastructure failures.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return &LoginResult{Message: "User not found"}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return &LoginResult{Message: "Invalid password"}, nil
	}

	// A pending verification record means the email is not verified yet.
	if _, err := s.codes.Find(ctx, email); err == nil {
		return &LoginResult{
			Message:           "Please verify your email before logging in",
			NeedsVerification: true,
			Email:             u.Email,
		}, nil
	} else if !errors.Is(err, ErrCodeNotFound) {
		return nil, errors.Wrap(err, "check verification")
	}

	pair, err := s.tokens.Issue(u.Email, u.Name)
	if err != nil {
		return nil, errors.Wrap(err, "issue tokens")
	}

	return &LoginResult{
		Successful: true,
		Message:    "Login successful",
		Email:      u.Email,
		Name:       u.Name,
		Tokens:     pair,
	}, nil
}

// RequestVerification generates a fresh six digit code, stores it, and mails
// it to the address.
func (s *Service) RequestVerification(ctx context.Context, email string) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.codes.Upsert(ctx, email, code); err != nil {
		return errors.Wrap(err, "store code")
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return errors.Wrap(err, "send code")
	}
	return nil
}

// VerifyEmail checks the submitted code and, on match, deletes the pending
// record so the address counts as verified.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	stored, err := s.codes.Find(ctx, email)
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeMismatch
	}
	return s.codes.Delete(ctx, email)
}

// UpdateProfile updates name, phone, and optionally the password. An empty
// password keeps the current one; a non-empty one is re-hashed.
func (s *Service) UpdateProfile(ctx context.Context, email, name, phone, password string) (*User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	u.Name = name
	u.PhoneNumber = phone
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		u.Password = string(hash)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

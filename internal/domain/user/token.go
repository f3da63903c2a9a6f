package user

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Access tokens are short-lived and carried as bearer
// headers; refresh tokens live in an httpOnly cookie.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 14 * 24 * time.Hour
)

// ErrInvalidToken is returned for tokens that fail signature, expiry, or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity claims embedded in both token kinds.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenPair holds a freshly issued access + refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer signs and verifies HS256 identity tokens with separate keys
// for the access and refresh flavors.
type TokenIssuer struct {
	accessKey  []byte
	refreshKey []byte
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer with the given signing keys.
func NewTokenIssuer(accessKey, refreshKey []byte) *TokenIssuer {
	return &TokenIssuer{
		accessKey:  accessKey,
		refreshKey: refreshKey,
		now:        time.Now,
	}
}

// Issue returns a token pair for the given identity.
func (t *TokenIssuer) Issue(email, name string) (TokenPair, error) {
	access, err := t.sign(email, name, t.accessKey, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, errors.Wrap(err, "sign access token")
	}
	refresh, err := t.sign(email, name, t.refreshKey, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, errors.Wrap(err, "sign refresh token")
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess returns a fresh access token only, used by the refresh flow.
func (t *TokenIssuer) IssueAccess(email, name string) (string, error) {
	return t.sign(email, name, t.accessKey, AccessTokenTTL)
}

func (t *TokenIssuer) sign(email, name string, key []byte, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseAccess validates an access token and returns its claims.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(token, t.accessKey)
}

// ParseRefresh validates a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return t.parse(token, t.refreshKey)
}

func (t *TokenIssuer) parse(token string, key []byte) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method %v", tok.Header["alg"])
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Email returns the identity the claims belong to.
func (c *Claims) Email() string {
	return c.Subject
}

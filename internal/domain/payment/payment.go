// Package payment implements the masked billing store. There is no gateway
// integration: the only thing ever persisted is a redacted card snapshot in
// the billing_info cookie, and the CVV is never stored anywhere.
package payment

import (
	"regexp"
	"strings"
)

// Card is the raw payment form input. It exists only in memory for the
// duration of a checkout; call Masked before handing it to any store.
type Card struct {
	Email  string
	Method string
	Number string
	Holder string
	Expiry string
	CVV    string
}

// MaskedCard is the persistable form of a Card: every digit except the last
// four replaced, CVV dropped entirely.
type MaskedCard struct {
	Email  string
	Method string
	Number string
	Holder string
	Expiry string
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// MissingFieldError reports the first required field that was empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// InvalidFieldError reports a present but malformed field.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return "invalid field: " + e.Field
}

// Validate checks presence and format of the card fields. The CVV is
// optional for stored-method flows but must be 3-4 digits when present.
func (c Card) Validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"email", c.Email},
		{"payment_method", c.Method},
		{"card_number", c.Number},
		{"exp_date", c.Expiry},
	} {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	if !cardNumberRe.MatchString(c.Number) {
		return &InvalidFieldError{Field: "card_number"}
	}
	if !expiryRe.MatchString(c.Expiry) {
		return &InvalidFieldError{Field: "exp_date"}
	}
	if c.CVV != "" && !cvvRe.MatchString(c.CVV) {
		return &InvalidFieldError{Field: "cvv"}
	}
	return nil
}

// Masked returns the redacted snapshot of the card.
func (c Card) Masked() MaskedCard {
	return MaskedCard{
		Email:  c.Email,
		Method: c.Method,
		Number: MaskNumber(c.Number),
		Holder: c.Holder,
		Expiry: c.Expiry,
	}
}

// MaskNumber replaces every digit except the last four with '*'. Non-digit
// characters (spaces, dashes) are preserved as-is, and the output always has
// the same length as the input.
func MaskNumber(number string) string {
	digits := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	var b strings.Builder
	b.Grow(len(number))
	seen := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			seen++
			if digits-seen >= 4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

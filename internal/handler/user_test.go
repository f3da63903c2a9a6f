package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_CreatesAccountWithPendingVerification(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/user", map[string]any{
		"name":     "Reader",
		"email":    "reader@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	u, err := env.users.FindByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = env.codes.Find(context.Background(), "reader@example.com")
	assert.NoError(t, err, "registration leaves a pending verification code")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "reader@example.com", "Reader", "secret1")

	rec := env.do(t, http.MethodPost, "/user", map[string]any{
		"name":     "Reader",
		"email":    "reader@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_ValidatesPayload(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"email": "reader@example.com", "password": "secret1"}},
		{"bad email", map[string]any{"name": "Reader", "email": "not-an-email", "password": "secret1"}},
		{"short password", map[string]any{"name": "Reader", "email": "reader@example.com", "password": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/user", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "reader@example.com", "Reader", "secret1")

	rec := env.do(t, http.MethodPut, "/user", map[string]any{
		"email":       "reader@example.com",
		"name":        "Renamed Reader",
		"phoneNumber": "555-0100",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Renamed Reader", resp.Name)
	assert.Equal(t, "555-0100", resp.PhoneNumber)
}

func TestUpdateUser_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/user", map[string]any{
		"email": "nobody@example.com",
		"name":  "Nobody",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUser_NeverExposesPasswordHash(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "reader@example.com", "Reader", "secret1")

	rec := env.do(t, http.MethodGet, "/user/reader@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "reader@example.com", resp["email"])
	assert.NotContains(t, resp, "password")
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "a@example.com", "A", "secret1")
	env.seedUser(t, "b@example.com", "B", "secret1")

	rec := env.do(t, http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	decodeJSON(t, rec, &resp)
	assert.Len(t, resp, 2)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "reader@example.com", "Reader", "secret1")

	rec := env.do(t, http.MethodDelete, "/user/reader@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gone := env.do(t, http.MethodGet, "/user/reader@example.com", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestVerificationFlow(t *testing.T) {
	env := newTestEnv(t)

	// Request a code.
	rec := env.do(t, http.MethodPost, "/email-verification", map[string]any{
		"email": "reader@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The admin lookup exposes the stored code.
	lookup := env.do(t, http.MethodGet, "/email-verification/reader@example.com", nil)
	require.Equal(t, http.StatusOK, lookup.Code)

	var stored struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	decodeJSON(t, lookup, &stored)
	require.Len(t, stored.Code, 6)

	// A wrong code is rejected, the right one verifies.
	wrong := env.do(t, http.MethodPost, "/email-verification/verify", map[string]any{
		"email": "reader@example.com",
		"code":  "000000",
	})
	assert.Equal(t, http.StatusBadRequest, wrong.Code)

	ok := env.do(t, http.MethodPost, "/email-verification/verify", map[string]any{
		"email": "reader@example.com",
		"code":  stored.Code,
	})
	require.Equal(t, http.StatusOK, ok.Code)

	// Verified means the pending record is gone.
	gone := env.do(t, http.MethodGet, "/email-verification/reader@example.com", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestVerify_NoPendingRecord(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/email-verification/verify", map[string]any{
		"email": "reader@example.com",
		"code":  "123456",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteVerification(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.codes.Upsert(context.Background(), "reader@example.com", "123456"))

	rec := env.do(t, http.MethodDelete, "/email-verification/reader@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gone := env.do(t, http.MethodDelete, "/email-verification/reader@example.com", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

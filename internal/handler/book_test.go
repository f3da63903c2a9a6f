package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
)

func seedCatalog(env *testEnv) {
	env.upstream.books = []book.Book{
		{ID: "vol1", Title: "Dune", Authors: []string{"Frank Herbert"}, Price: decimal.NewFromInt(20), Stock: 5},
		{ID: "vol2", Title: "Hyperion", Authors: []string{"Dan Simmons"}, Price: decimal.NewFromInt(15), Stock: 3},
	}
}

func TestBooks_RandomListing(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	rec := env.do(t, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []bookPayload
	decodeJSON(t, rec, &resp)
	assert.Len(t, resp, 2)
}

func TestBooks_Search(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	rec := env.do(t, http.MethodGet, "/books/search?q=dune", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []bookPayload
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "Dune", resp[0].Title)
	assert.True(t, resp[0].Price.Equal(decimal.NewFromInt(20)))
}

func TestBooks_SearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/books/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBooks_GetByID(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	rec := env.do(t, http.MethodGet, "/books/vol2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp bookPayload
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Hyperion", resp.Title)
	assert.Equal(t, []string{"Dan Simmons"}, resp.Authors)
}

func TestBooks_GetUnknownID(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	rec := env.do(t, http.MethodGet, "/books/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

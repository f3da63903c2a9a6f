package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
)

type bookPayload struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Authors     []string        `json:"authors"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	Stock       int             `json:"stock"`
}

func bookToPayload(b book.Book) bookPayload {
	return bookPayload{
		ID:          b.ID,
		Title:       b.Title,
		Authors:     b.Authors,
		Price:       b.Price,
		Description: b.Description,
		Thumbnail:   b.Thumbnail,
		Stock:       b.Stock,
	}
}

func booksToPayload(books []book.Book) []bookPayload {
	resp := make([]bookPayload, 0, len(books))
	for _, b := range books {
		resp = append(resp, bookToPayload(b))
	}
	return resp
}

// randomBooks serves the storefront landing sample.
func (h *Handler) randomBooks(c *gin.Context) {
	books, err := h.catalog.Random(c.Request.Context())
	if err != nil {
		h.lg.Error("random books failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, booksToPayload(books))
}

func (h *Handler) searchBooks(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		errorJSON(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	books, err := h.catalog.Search(c.Request.Context(), q)
	if err != nil {
		h.lg.Error("book search failed", zap.Error(err), zap.String("query", q))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, booksToPayload(books))
}

func (h *Handler) getBook(c *gin.Context) {
	b, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, book.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		h.lg.Error("book lookup failed", zap.Error(err), zap.String("id", c.Param("id")))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, bookToPayload(*b))
}

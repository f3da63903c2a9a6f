package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/domain/cart"
	"github.com/xenking/bookshelf-backend/internal/domain/checkout"
	"github.com/xenking/bookshelf-backend/internal/domain/history"
	"github.com/xenking/bookshelf-backend/internal/domain/payment"
	"github.com/xenking/bookshelf-backend/internal/domain/shipping"
)

type shippingPayload struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type paymentPayload struct {
	Method     string `json:"paymentMethod"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

type checkoutRequest struct {
	Shipping shippingPayload `json:"shippingInfo"`
	Payment  paymentPayload  `json:"paymentInfo"`
}

// billingCookieVault writes the masked card snapshot into the billing cookie
// of the request being served.
type billingCookieVault struct {
	c *gin.Context
}

func (v billingCookieVault) SaveCard(_ context.Context, card payment.MaskedCard) error {
	return setJSONCookie(v.c, billingCookie, maskedCardPayload{
		Email:      card.Email,
		Method:     card.Method,
		CardNumber: card.Number,
		CardHolder: card.Holder,
		ExpiryDate: card.Expiry,
	}, weekSeconds)
}

// orderCookieStore keeps the last order snapshot for the confirmation view,
// which renders after the live cart has been cleared.
type orderCookieStore struct {
	c *gin.Context
}

func (s orderCookieStore) SaveSnapshot(_ context.Context, email string, items []cart.Item) error {
	snapshot := struct {
		Email    string            `json:"email"`
		Items    []cartItemPayload `json:"items"`
		PlacedAt time.Time         `json:"placedAt"`
	}{Email: email, PlacedAt: time.Now()}
	for _, it := range items {
		snapshot.Items = append(snapshot.Items, cartItemPayload{
			ID:        it.ID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Thumbnail: it.Thumbnail,
		})
	}
	return setJSONCookie(s.c, orderCookie, snapshot, weekSeconds)
}

// placeOrder drives the checkout wizard server-side: the session advances one
// step per validated stage and PlaceOrder refuses to run before review.
func (h *Handler) placeOrder(c *gin.Context) {
	claims := authClaims(c)

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid checkout payload: "+err.Error())
		return
	}

	crt := readCart(c)
	if crt.Len() == 0 {
		errorJSON(c, http.StatusBadRequest, "cart is empty")
		return
	}

	sess := checkout.NewSession()
	sess.Next() // cart reviewed, onto shipping

	ship := shipping.Info{
		Email:      claims.Email(),
		Address:    req.Shipping.Address,
		City:       req.Shipping.City,
		State:      req.Shipping.State,
		PostalCode: req.Shipping.PostalCode,
		Country:    req.Shipping.Country,
	}
	if err := ship.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	sess.Next() // shipping done, onto payment

	card := payment.Card{
		Email:  claims.Email(),
		Method: req.Payment.Method,
		Number: req.Payment.CardNumber,
		Holder: req.Payment.CardHolder,
		Expiry: req.Payment.ExpiryDate,
		CVV:    req.Payment.CVV,
	}
	if err := card.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	sess.Next() // payment done, onto review

	svc := checkout.NewService(
		h.shipping,
		billingCookieVault{c: c},
		h.history,
		orderCookieStore{c: c},
		h.lg,
	)
	ident := &checkout.Identity{Email: claims.Email(), Name: claims.Name}

	report, err := svc.PlaceOrder(c.Request.Context(), sess, ident, crt, ship, card)
	if errors.Is(err, checkout.ErrUnauthenticated) {
		errorJSON(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	var precond *checkout.PreconditionError
	if errors.As(err, &precond) {
		errorJSON(c, http.StatusConflict, precond.Error())
		return
	}
	if err != nil {
		h.lg.Error("checkout failed", zap.Error(err))
		internalError(c)
		return
	}

	dropCart(c)

	resp := gin.H{
		"success": true,
		"report": gin.H{
			"attempted": report.Attempted,
			"recorded":  report.Recorded,
			"skipped":   report.Skipped,
		},
	}
	if report.NothingRecorded() {
		resp["warning"] = "Your order was processed but could not be recorded"
	}
	c.JSON(http.StatusOK, resp)
}

type historyPayload struct {
	ID         int64           `json:"id,omitempty"`
	Email      string          `json:"email"`
	BookISBN   string          `json:"book_isbn"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Qty        int             `json:"qty"`
	CheckoutAt time.Time       `json:"checkout_date_and_time"`
}

func (h *Handler) appendHistory(c *gin.Context) {
	var req historyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid history payload: "+err.Error())
		return
	}
	if req.Email == "" || req.BookISBN == "" {
		errorJSON(c, http.StatusBadRequest, "email and book_isbn are required")
		return
	}
	if req.CheckoutAt.IsZero() {
		req.CheckoutAt = time.Now()
	}

	entry := history.Entry{
		Email:      req.Email,
		BookISBN:   req.BookISBN,
		TotalPrice: req.TotalPrice,
		Qty:        req.Qty,
		CheckoutAt: req.CheckoutAt,
	}
	if err := h.history.Append(c.Request.Context(), &entry); err != nil {
		h.lg.Error("history append failed", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, historyPayload{
		ID:         entry.ID,
		Email:      entry.Email,
		BookISBN:   entry.BookISBN,
		TotalPrice: entry.TotalPrice,
		Qty:        entry.Qty,
		CheckoutAt: entry.CheckoutAt,
	})
}

func (h *Handler) listHistory(c *gin.Context) {
	entries, err := h.history.ListByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.lg.Error("history list failed", zap.Error(err))
		internalError(c)
		return
	}

	resp := make([]historyPayload, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, historyPayload{
			ID:         e.ID,
			Email:      e.Email,
			BookISBN:   e.BookISBN,
			TotalPrice: e.TotalPrice,
			Qty:        e.Qty,
			CheckoutAt: e.CheckoutAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

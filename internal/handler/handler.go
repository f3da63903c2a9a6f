// Package handler exposes the HTTP API. Route handlers stay thin: decode,
// delegate to a domain service or repository, map typed errors to status
// codes. Cart, billing, and confirmation snapshots live in cookies, so the
// cookie helpers here are part of the storage story, not just transport.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
	"github.com/xenking/bookshelf-backend/internal/domain/history"
	"github.com/xenking/bookshelf-backend/internal/domain/shipping"
	"github.com/xenking/bookshelf-backend/internal/domain/user"
)

// Handler holds every dependency the HTTP layer needs.
type Handler struct {
	users    *user.Service
	userRepo user.Repository
	codes    user.VerificationRepository
	tokens   *user.TokenIssuer
	catalog  *book.Service
	shipping shipping.Repository
	history  history.Repository
	lg       *zap.Logger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	users *user.Service,
	userRepo user.Repository,
	codes user.VerificationRepository,
	tokens *user.TokenIssuer,
	catalog *book.Service,
	shippingRepo shipping.Repository,
	historyRepo history.Repository,
	lg *zap.Logger,
) *Handler {
	return &Handler{
		users:    users,
		userRepo: userRepo,
		codes:    codes,
		tokens:   tokens,
		catalog:  catalog,
		shipping: shippingRepo,
		history:  historyRepo,
		lg:       lg,
	}
}

// Router builds the gin engine with all API routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.login)
		auth.GET("/refresh_token", h.refreshToken)
		auth.DELETE("/refresh_token", h.logout)
	}

	books := r.Group("/books")
	{
		books.GET("", h.randomBooks)
		books.GET("/search", h.searchBooks)
		books.GET("/:id", h.getBook)
	}

	cartGroup := r.Group("/shopping-cart")
	{
		cartGroup.GET("", h.getCart)
		cartGroup.DELETE("", h.clearCart)
		cartGroup.POST("/items", h.addCartItem)
		cartGroup.PUT("/items/:id", h.setCartQuantity)
		cartGroup.DELETE("/items/:id", h.removeCartItem)
	}

	r.POST("/checkout", h.requireAuth, h.placeOrder)

	hist := r.Group("/checkout-history")
	{
		hist.POST("", h.appendHistory)
		hist.GET("/:email", h.listHistory)
	}

	verify := r.Group("/email-verification")
	{
		verify.POST("", h.requestVerification)
		verify.POST("/verify", h.verifyEmail)
		verify.GET("/:email", h.getVerification)
		verify.DELETE("/:email", h.deleteVerification)
	}

	pay := r.Group("/payments")
	{
		pay.GET("", h.getBillingInfo)
		pay.POST("", h.saveBillingInfo)
		pay.DELETE("", h.deleteBillingInfo)
	}

	ship := r.Group("/shipping-info")
	{
		ship.GET("/:email", h.getShippingInfo)
		ship.POST("", h.createShippingInfo)
		ship.PUT("", h.updateShippingInfo)
		ship.DELETE("/:email", h.deleteShippingInfo)
	}

	users := r.Group("/user")
	{
		users.GET("", h.listUsers)
		users.GET("/profile", h.requireAuth, h.profile)
		users.GET("/:email", h.getUser)
		users.POST("", h.register)
		users.PUT("", h.updateUser)
		users.DELETE("/:email", h.deleteUser)
	}

	return r
}

const claimsKey = "authClaims"

// requireAuth validates the bearer token and stores the claims on the gin
// context for downstream handlers.
func (h *Handler) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	claims, err := h.tokens.ParseAccess(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set(claimsKey, claims)
	c.Next()
}

// authClaims returns the claims stored by requireAuth.
func authClaims(c *gin.Context) *user.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*user.Claims)
	return claims
}

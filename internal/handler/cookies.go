package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/bookshelf-backend/internal/domain/cart"
)

// Cookie names shared with the storefront client.
const (
	cartCookie    = "shopping_cart"
	billingCookie = "billing_info"
	refreshCookie = "refreshToken"
	orderCookie   = "last_order"
)

const (
	weekSeconds     = 7 * 24 * 60 * 60
	fortnightSecond = 14 * 24 * 60 * 60
)

// readCart decodes the cart cookie. A missing or malformed cookie yields an
// empty cart, never an error.
func readCart(c *gin.Context) *cart.Cart {
	raw, err := c.Cookie(cartCookie)
	if err != nil {
		return cart.New()
	}
	return cart.Decode([]byte(raw))
}

// writeCart persists the cart back into the cookie for a week.
func writeCart(c *gin.Context, crt *cart.Cart) {
	c.SetCookie(cartCookie, string(cart.Encode(crt)), weekSeconds, "/", "", false, false)
}

// dropCart expires the cart cookie.
func dropCart(c *gin.Context) {
	c.SetCookie(cartCookie, "", -1, "/", "", false, false)
}

// setJSONCookie marshals v into a cookie with the given lifetime in seconds.
func setJSONCookie(c *gin.Context, name string, v any, maxAge int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.SetCookie(name, string(data), maxAge, "/", "", false, false)
	return nil
}

// readJSONCookie unmarshals the named cookie into v. Returns false when the
// cookie is absent or unreadable.
func readJSONCookie(c *gin.Context, name string, v any) bool {
	raw, err := c.Cookie(name)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// setRefreshCookie stores the refresh token httpOnly. Remembered sessions get
// a two week lifetime, otherwise the cookie dies with the browser session.
func setRefreshCookie(c *gin.Context, token string, remember bool) {
	maxAge := 0
	if remember {
		maxAge = fortnightSecond
	}
	c.SetCookie(refreshCookie, token, maxAge, "/", "", false, true)
}

// dropRefreshCookie expires the refresh token cookie.
func dropRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
}

// errorJSON writes the shared error envelope.
func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// internalError hides details from the client; the middleware chain already
// logged the request.
func internalError(c *gin.Context) {
	errorJSON(c, http.StatusInternalServerError, "internal server error")
}

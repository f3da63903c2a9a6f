package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// login checks credentials. Failed credentials are a 200 with
// successful:false, matching the storefront contract; only infrastructure
// failures become 5xx.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.lg.Error("login failed", zap.Error(err))
		internalError(c)
		return
	}

	if result.NeedsVerification {
		c.JSON(http.StatusOK, gin.H{
			"successful":        false,
			"needsVerification": true,
			"message":           result.Message,
			"email":             result.Email,
		})
		return
	}
	if !result.Successful {
		c.JSON(http.StatusOK, gin.H{
			"successful": false,
			"message":    result.Message,
		})
		return
	}

	setRefreshCookie(c, result.Tokens.RefreshToken, req.Remember)
	c.JSON(http.StatusOK, gin.H{
		"successful":  true,
		"message":     result.Message,
		"accessToken": result.Tokens.AccessToken,
		"user": gin.H{
			"email": result.Email,
			"name":  result.Name,
		},
	})
}

// refreshToken re-issues a short-lived access token from the httpOnly
// refresh cookie.
func (h *Handler) refreshToken(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		errorJSON(c, http.StatusUnauthorized, "no refresh token")
		return
	}

	claims, err := h.tokens.ParseRefresh(raw)
	if err != nil {
		dropRefreshCookie(c)
		errorJSON(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	access, err := h.tokens.IssueAccess(claims.Email(), claims.Name)
	if err != nil {
		h.lg.Error("access token issue failed", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"user": gin.H{
			"email": claims.Email(),
			"name":  claims.Name,
		},
	})
}

// logout clears the refresh cookie.
func (h *Handler) logout(c *gin.Context) {
	dropRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/domain/user"
)

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required,min=6"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid registration payload: "+err.Error())
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.PhoneNumber, req.Password)
	if errors.Is(err, user.ErrDuplicate) {
		errorJSON(c, http.StatusConflict, "An account with this email already exists")
		return
	}
	if err != nil {
		h.lg.Error("registration failed", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"email":   u.Email,
		"message": "Account created, check your email for the verification code",
	})
}

type updateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid update payload: "+err.Error())
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), req.Email, req.Name, req.PhoneNumber, req.Password)
	if errors.Is(err, user.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.lg.Error("profile update failed", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, profileResponse(u.Profile()))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		h.lg.Error("user list failed", zap.Error(err))
		internalError(c)
		return
	}

	resp := make([]gin.H, 0, len(users))
	for _, p := range users {
		resp = append(resp, profileResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.userRepo.FindByEmail(c.Request.Context(), c.Param("email"))
	if errors.Is(err, user.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.lg.Error("user lookup failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, profileResponse(u.Profile()))
}

func (h *Handler) deleteUser(c *gin.Context) {
	err := h.userRepo.Delete(c.Request.Context(), c.Param("email"))
	if errors.Is(err, user.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.lg.Error("user delete failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// profile returns the authenticated user's own record.
func (h *Handler) profile(c *gin.Context) {
	claims := authClaims(c)
	u, err := h.userRepo.FindByEmail(c.Request.Context(), claims.Email())
	if errors.Is(err, user.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.lg.Error("profile lookup failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, profileResponse(u.Profile()))
}

func profileResponse(p user.Profile) gin.H {
	return gin.H{
		"email":       p.Email,
		"name":        p.Name,
		"phoneNumber": p.PhoneNumber,
	}
}

type verificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) requestVerification(c *gin.Context) {
	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.users.RequestVerification(c.Request.Context(), req.Email); err != nil {
		h.lg.Error("verification request failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (h *Handler) verifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "email and code are required")
		return
	}

	err := h.users.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	switch {
	case errors.Is(err, user.ErrCodeNotFound):
		errorJSON(c, http.StatusNotFound, "no pending verification for this email")
	case errors.Is(err, user.ErrCodeMismatch):
		errorJSON(c, http.StatusBadRequest, "incorrect verification code")
	case err != nil:
		h.lg.Error("verification failed", zap.Error(err))
		internalError(c)
	default:
		c.JSON(http.StatusOK, gin.H{"verified": true})
	}
}

func (h *Handler) getVerification(c *gin.Context) {
	code, err := h.codes.Find(c.Request.Context(), c.Param("email"))
	if errors.Is(err, user.ErrCodeNotFound) {
		errorJSON(c, http.StatusNotFound, "no pending verification for this email")
		return
	}
	if err != nil {
		h.lg.Error("verification lookup failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": c.Param("email"), "code": code})
}

func (h *Handler) deleteVerification(c *gin.Context) {
	err := h.codes.Delete(c.Request.Context(), c.Param("email"))
	if errors.Is(err, user.ErrCodeNotFound) {
		errorJSON(c, http.StatusNotFound, "no pending verification for this email")
		return
	}
	if err != nil {
		h.lg.Error("verification delete failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/domain/shipping"
)

type shippingInfoPayload struct {
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (p shippingInfoPayload) toDomain() shipping.Info {
	return shipping.Info{
		Email:      p.Email,
		Address:    p.Address,
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}
}

func shippingToPayload(info shipping.Info) shippingInfoPayload {
	return shippingInfoPayload{
		Email:      info.Email,
		Address:    info.Address,
		City:       info.City,
		State:      info.State,
		PostalCode: info.PostalCode,
		Country:    info.Country,
	}
}

func (h *Handler) getShippingInfo(c *gin.Context) {
	info, err := h.shipping.Get(c.Request.Context(), c.Param("email"))
	if errors.Is(err, shipping.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "no shipping info for this email")
		return
	}
	if err != nil {
		h.lg.Error("shipping lookup failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, shippingToPayload(*info))
}

func (h *Handler) createShippingInfo(c *gin.Context) {
	var req shippingInfoPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid shipping payload: "+err.Error())
		return
	}

	info := req.toDomain()
	if err := info.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.shipping.Create(c.Request.Context(), info)
	if errors.Is(err, shipping.ErrDuplicate) {
		errorJSON(c, http.StatusConflict, "shipping info already exists for this email")
		return
	}
	if err != nil {
		h.lg.Error("shipping create failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, shippingToPayload(info))
}

func (h *Handler) updateShippingInfo(c *gin.Context) {
	var req shippingInfoPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid shipping payload: "+err.Error())
		return
	}

	info := req.toDomain()
	if err := info.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.shipping.Update(c.Request.Context(), info)
	if errors.Is(err, shipping.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "no shipping info for this email")
		return
	}
	if err != nil {
		h.lg.Error("shipping update failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, shippingToPayload(info))
}

func (h *Handler) deleteShippingInfo(c *gin.Context) {
	err := h.shipping.Delete(c.Request.Context(), c.Param("email"))
	if errors.Is(err, shipping.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "no shipping info for this email")
		return
	}
	if err != nil {
		h.lg.Error("shipping delete failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

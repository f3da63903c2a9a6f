package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/bookshelf-backend/internal/domain/payment"
)

// maskedCardPayload is the billing cookie blob. Only the redacted card ever
// reaches a cookie; the CVV has no field here at all.
type maskedCardPayload struct {
	Email      string `json:"email"`
	Method     string `json:"paymentMethod"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpiryDate string `json:"expiryDate"`
}

type savePaymentRequest struct {
	Email      string `json:"email"`
	Method     string `json:"paymentMethod"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpiryDate string `json:"expiryDate"`
}

func (h *Handler) getBillingInfo(c *gin.Context) {
	var stored maskedCardPayload
	if !readJSONCookie(c, billingCookie, &stored) {
		errorJSON(c, http.StatusNotFound, "no billing info stored")
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *Handler) saveBillingInfo(c *gin.Context) {
	var req savePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid payment payload: "+err.Error())
		return
	}

	card := payment.Card{
		Email:  req.Email,
		Method: req.Method,
		Number: req.CardNumber,
		Holder: req.CardHolder,
		Expiry: req.ExpiryDate,
	}
	if err := card.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	masked := card.Masked()
	stored := maskedCardPayload{
		Email:      masked.Email,
		Method:     masked.Method,
		CardNumber: masked.Number,
		CardHolder: masked.Holder,
		ExpiryDate: masked.Expiry,
	}
	if err := setJSONCookie(c, billingCookie, stored, weekSeconds); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *Handler) deleteBillingInfo(c *gin.Context) {
	c.SetCookie(billingCookie, "", -1, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookshelf-backend/internal/domain/cart"
)

type cartItemPayload struct {
	ID        string          `json:"id" binding:"required"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Thumbnail string          `json:"thumbnail"`
}

type cartResponse struct {
	Items      []cartItemPayload `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

func cartToResponse(crt *cart.Cart) cartResponse {
	items := crt.Items()
	resp := cartResponse{Items: make([]cartItemPayload, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, cartItemPayload{
			ID:        it.ID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Thumbnail: it.Thumbnail,
		})
	}
	totals := crt.Totals()
	resp.TotalItems = totals.Items
	resp.TotalPrice = totals.Price
	return resp
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartToResponse(readCart(c)))
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req cartItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid cart item: "+err.Error())
		return
	}

	crt := readCart(c)
	item := cart.Item{
		ID:        req.ID,
		Title:     req.Title,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Thumbnail: req.Thumbnail,
	}
	if item.Quantity <= 1 {
		crt.Add(item)
	} else {
		for range item.Quantity {
			crt.Add(item)
		}
	}

	writeCart(c, crt)
	c.JSON(http.StatusOK, cartToResponse(crt))
}

func (h *Handler) setCartQuantity(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid quantity payload")
		return
	}

	crt := readCart(c)
	crt.SetQuantity(c.Param("id"), req.Quantity)

	writeCart(c, crt)
	c.JSON(http.StatusOK, cartToResponse(crt))
}

func (h *Handler) removeCartItem(c *gin.Context) {
	crt := readCart(c)
	crt.Remove(c.Param("id"))

	writeCart(c, crt)
	c.JSON(http.StatusOK, cartToResponse(crt))
}

func (h *Handler) clearCart(c *gin.Context) {
	dropCart(c)
	c.JSON(http.StatusOK, cartToResponse(cart.New()))
}

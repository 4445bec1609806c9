package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/avenge-storefront/internal/cart"
	"github.com/imrishuroy/avenge-storefront/internal/validation"
)

func (h *handler) store(c *gin.Context) *cart.Store {
	return h.cfg.Carts.Open(c.Request.Context(), sessionID(c))
}

func (h *handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, newCartResponse(h.store(c).Snapshot()))
}

// addItem adds the product Count() times, the way the product page's quantity picker does.
func (h *handler) addItem(c *gin.Context) {
	var req validation.AddItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	p, ok := h.cfg.Catalog.ByID(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return
	}

	ctx := c.Request.Context()
	store := h.store(c)
	var state cart.State
	for i := 0; i < req.Count(); i++ {
		state = store.AddItem(ctx, p)
	}
	c.JSON(http.StatusOK, newCartResponse(state))
}

func (h *handler) setQuantity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}
	var req validation.SetQuantityRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	state := h.store(c).SetQuantity(c.Request.Context(), id, *req.Quantity)
	c.JSON(http.StatusOK, newCartResponse(state))
}

func (h *handler) removeItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}
	state := h.store(c).RemoveItem(c.Request.Context(), id)
	c.JSON(http.StatusOK, newCartResponse(state))
}

func (h *handler) clearCart(c *gin.Context) {
	state := h.store(c).Clear(c.Request.Context())
	c.JSON(http.StatusOK, newCartResponse(state))
}

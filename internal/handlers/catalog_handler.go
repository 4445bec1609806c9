package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/avenge-storefront/internal/catalog"
)

func (h *handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"featured":    h.cfg.Catalog.Featured(HomeFeaturedLimit),
		"bestsellers": h.cfg.Catalog.Bestsellers(HomeBestsellersLimit),
	})
}

func (h *handler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.cfg.Catalog.Categories()})
}

func (h *handler) listProducts(c *gin.Context) {
	f := catalog.ParseFilter(c.Request.URL.Query())
	products := catalog.Apply(h.cfg.Catalog.All(), f)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"filter":   f,
	})
}

func (h *handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}
	p, ok := h.cfg.Catalog.ByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": p,
		"related": h.cfg.Catalog.Related(p, RelatedLimit),
	})
}

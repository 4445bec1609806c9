// Package handlers exposes the storefront over HTTP with gin: catalog browsing, the session cart,
// checkout and the contact form.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/imrishuroy/avenge-storefront/internal/cart"
	"github.com/imrishuroy/avenge-storefront/internal/catalog"
	"github.com/imrishuroy/avenge-storefront/internal/checkout"
	"github.com/imrishuroy/avenge-storefront/internal/pricing"
	"github.com/imrishuroy/avenge-storefront/internal/validation"
	"github.com/rs/zerolog"
)

// Listing sizes used by the storefront pages.
const (
	HomeFeaturedLimit    = 4
	HomeBestsellersLimit = 3
	RelatedLimit         = 3
)

// HandlerConfig groups dependencies for the storefront routes.
type HandlerConfig struct {
	Catalog  *catalog.Catalog
	Carts    *cart.Provider
	Checkout *checkout.Service
	Logger   zerolog.Logger
}

type handler struct {
	cfg HandlerConfig
	v   *validatorv10.Validate
}

// RegisterRoutes registers the storefront routes. Cart, checkout and contact routes sit behind
// the session middleware.
func RegisterRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := &handler{cfg: cfg, v: validation.New()}

	r.GET("/home", h.home)
	r.GET("/categories", h.categories)
	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)

	s := r.Group("/", Session())
	s.GET("/cart", h.getCart)
	s.POST("/cart/items", h.addItem)
	s.PUT("/cart/items/:id", h.setQuantity)
	s.DELETE("/cart/items/:id", h.removeItem)
	s.DELETE("/cart", h.clearCart)
	s.POST("/checkout", h.submitCheckout)
	s.POST("/contact", h.submitContact)
}

type cartResponse struct {
	Cart    cart.State      `json:"cart"`
	Summary pricing.Summary `json:"summary"`
}

func newCartResponse(s cart.State) cartResponse {
	return cartResponse{Cart: s, Summary: s.Summary()}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

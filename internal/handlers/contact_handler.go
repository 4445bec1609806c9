package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/avenge-storefront/internal/logging"
	"github.com/imrishuroy/avenge-storefront/internal/validation"
)

// submitContact acknowledges the contact form. Messages are not stored.
func (h *handler) submitContact(c *gin.Context) {
	var req validation.ContactRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	log := logging.FromContext(c.Request.Context(), h.cfg.Logger)
	log.Info().
		Str("subject", req.Subject).
		Int("message_len", len(req.Message)).
		Msg("contact message received")
	c.JSON(http.StatusAccepted, gin.H{"status": "received"})
}

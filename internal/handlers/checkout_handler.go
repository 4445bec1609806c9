package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/avenge-storefront/internal/checkout"
	"github.com/imrishuroy/avenge-storefront/internal/logging"
	"github.com/imrishuroy/avenge-storefront/internal/validation"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

func (h *handler) submitCheckout(c *gin.Context) {
	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	idempKey := c.GetHeader(idempotencyKeyHeader)
	if len(idempKey) > maxIdempotencyKeyLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_idempotency_key"})
		return
	}

	ctx := c.Request.Context()
	res, err := h.cfg.Checkout.Submit(ctx, h.store(c), checkout.SubmitInput{
		SessionID:      sessionID(c),
		IdempotencyKey: idempKey,
		CorrelationID:  c.GetString(ctxRequestID),
		Request:        req,
	})
	if err != nil {
		var serr *checkout.SubmissionError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusConflict, gin.H{"error": "empty_cart"})
		case errors.Is(err, checkout.ErrSubmissionInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "submission_in_progress"})
		case errors.As(err, &serr):
			log := logging.FromContext(ctx, h.cfg.Logger)
			log.Warn().Err(err).Str("stage", serr.Stage).Msg("checkout failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "submission_failed", "retryable": serr.Retryable()})
		default:
			log := logging.FromContext(ctx, h.cfg.Logger)
			log.Error().Err(err).Msg("checkout failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	if res.Replayed {
		c.Header(replayedHeader, "true")
	}
	c.JSON(http.StatusCreated, res.Confirmation)
}

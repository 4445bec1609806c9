package checkout

import (
	"time"

	"github.com/imrishuroy/avenge-storefront/internal/cart"
	"github.com/imrishuroy/avenge-storefront/internal/pricing"
	"github.com/imrishuroy/avenge-storefront/internal/validation"
)

// SubmitInput carries one checkout attempt.
type SubmitInput struct {
	SessionID      string
	IdempotencyKey string
	CorrelationID  string
	Request        validation.CheckoutRequest
}

// Result is the outcome of a successful submission. Replayed is set when the confirmation came
// from an earlier submission with the same idempotency key.
type Result struct {
	Confirmation Confirmation
	Replayed     bool
}

type ShipTo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Confirmation is what the order-success view shows. Only the last four card digits are kept.
type Confirmation struct {
	OrderNumber string          `json:"orderNumber"`
	PlacedAt    time.Time       `json:"placedAt"`
	Cart        cart.State      `json:"cart"`
	Summary     pricing.Summary `json:"summary"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	ShipTo      ShipTo          `json:"shipTo"`
	CardLast4   string          `json:"cardLast4"`
}

// PlacedEvent is published to the checkout queue once an order is confirmed.
type PlacedEvent struct {
	OrderNumber   string    `json:"order_number"`
	SessionID     string    `json:"session_id"`
	ItemCount     int       `json:"item_count"`
	Subtotal      string    `json:"subtotal"`
	Total         string    `json:"total"`
	PlacedAt      time.Time `json:"placed_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func newConfirmation(orderNumber string, placedAt time.Time, snapshot cart.State, req validation.CheckoutRequest) Confirmation {
	return Confirmation{
		OrderNumber: orderNumber,
		PlacedAt:    placedAt,
		Cart:        snapshot,
		Summary:     snapshot.Summary(),
		Email:       req.Email,
		Phone:       req.Phone,
		ShipTo: ShipTo{
			Name:    req.FirstName + " " + req.LastName,
			Address: req.Address,
			City:    req.City,
			State:   req.State,
			ZipCode: req.ZipCode,
			Country: req.Country,
		},
		CardLast4: req.CardLast4(),
	}
}

func (c Confirmation) event(sessionID, correlationID string) PlacedEvent {
	return PlacedEvent{
		OrderNumber:   c.OrderNumber,
		SessionID:     sessionID,
		ItemCount:     c.Cart.TotalItems(),
		Subtotal:      c.Summary.Subtotal.StringFixed(2),
		Total:         c.Summary.Total.StringFixed(2),
		PlacedAt:      c.PlacedAt,
		CorrelationID: correlationID,
	}
}

// Package pricing derives the order summary shown on the cart and checkout views.
package pricing

import "github.com/shopspring/decimal"

var (
	// FlatShipping applies to any non-empty order.
	FlatShipping = decimal.NewFromInt(15)
	// TaxRate is the flat sales tax applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.08")
)

// Summary is recomputed from the cart on every read and never persisted.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute returns shipping, tax and total for a subtotal and item count. Tax is subtotal * TaxRate
// rounded half away from zero to cents, so Total never carries sub-cent digits; for whole-unit
// catalog prices the rounding is exact.
func Compute(subtotal decimal.Decimal, totalItems int) Summary {
	shipping := decimal.Zero
	if totalItems > 0 {
		shipping = FlatShipping
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Package cart owns the shopping cart state: a pure reducer over cart commands, a per-session
// Store that persists every transition to a durable slot, and a Provider handing out Stores.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/imrishuroy/avenge-storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the per-line quantity ceiling.
const MaxQuantity = 10

// Line is one product in the cart. Name, Price, Image and Category are a snapshot of the catalog
// item taken when the product was first added.
type Line struct {
	ProductID int
	Quantity  int
	Name      string
	Price     decimal.Decimal
	Image     string
	Category  string
}

// Subtotal is Price * Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the cart aggregate. Lines are unique by ProductID and kept in first-added order.
// Totals are always derived from Lines.
type State struct {
	Lines []Line
}

func Empty() State {
	return State{Lines: []Line{}}
}

func (s State) TotalItems() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Summary derives shipping, tax and order total from the cart.
func (s State) Summary() pricing.Summary {
	return pricing.Compute(s.TotalPrice(), s.TotalItems())
}

func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Line returns the line for productID, if present.
func (s State) Line(productID int) (Line, bool) {
	if i := s.index(productID); i >= 0 {
		return s.Lines[i], true
	}
	return Line{}, false
}

// Equal compares by value; prices compare numerically.
func (s State) Equal(o State) bool {
	return slices.EqualFunc(s.Lines, o.Lines, func(a, b Line) bool {
		return a.ProductID == b.ProductID &&
			a.Quantity == b.Quantity &&
			a.Name == b.Name &&
			a.Price.Equal(b.Price) &&
			a.Image == b.Image &&
			a.Category == b.Category
	})
}

func (s State) index(productID int) int {
	return slices.IndexFunc(s.Lines, func(l Line) bool { return l.ProductID == productID })
}

func (s State) clone() State {
	if s.Lines == nil {
		return Empty()
	}
	return State{Lines: slices.Clone(s.Lines)}
}

// ErrCorruptPayload marks a persisted cart that parsed but broke an invariant, or did not parse.
var ErrCorruptPayload = errors.New("corrupt cart payload")

type wireLine struct {
	ProductID int         `json:"productId"`
	Quantity  int         `json:"quantity"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Image     string      `json:"image"`
	Category  string      `json:"category"`
}

type wireState struct {
	Lines      []wireLine  `json:"lines"`
	TotalItems int         `json:"totalItems"`
	TotalPrice json.Number `json:"totalPrice"`
}

// MarshalJSON writes {lines, totalItems, totalPrice} with prices as exact JSON numbers.
func (s State) MarshalJSON() ([]byte, error) {
	w := wireState{
		Lines:      make([]wireLine, 0, len(s.Lines)),
		TotalItems: s.TotalItems(),
		TotalPrice: json.Number(s.TotalPrice().String()),
	}
	for _, l := range s.Lines {
		w.Lines = append(w.Lines, wireLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Name:      l.Name,
			Price:     json.Number(l.Price.String()),
			Image:     l.Image,
			Category:  l.Category,
		})
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the persisted form. Stored totals are ignored and recomputed; a payload
// that breaks a line invariant is rejected with ErrCorruptPayload.
func (s *State) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	lines := make([]Line, 0, len(w.Lines))
	seen := make(map[int]struct{}, len(w.Lines))
	for _, wl := range w.Lines {
		if wl.ProductID <= 0 {
			return fmt.Errorf("%w: invalid product id %d", ErrCorruptPayload, wl.ProductID)
		}
		if _, dup := seen[wl.ProductID]; dup {
			return fmt.Errorf("%w: duplicate product id %d", ErrCorruptPayload, wl.ProductID)
		}
		seen[wl.ProductID] = struct{}{}
		if wl.Quantity < 1 || wl.Quantity > MaxQuantity {
			return fmt.Errorf("%w: product %d has quantity %d", ErrCorruptPayload, wl.ProductID, wl.Quantity)
		}
		price, err := decimal.NewFromString(wl.Price.String())
		if err != nil || price.IsNegative() {
			return fmt.Errorf("%w: product %d has price %q", ErrCorruptPayload, wl.ProductID, wl.Price)
		}
		lines = append(lines, Line{
			ProductID: wl.ProductID,
			Quantity:  wl.Quantity,
			Name:      wl.Name,
			Price:     price,
			Image:     wl.Image,
			Category:  wl.Category,
		})
	}
	s.Lines = lines
	return nil
}

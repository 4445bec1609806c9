package cart

import (
	"slices"

	"github.com/imrishuroy/avenge-storefront/internal/catalog"
)

// Command is a cart transition. The set of commands is closed: AddItem, RemoveItem,
// SetQuantity and Clear.
type Command interface {
	op() string
}

// AddItem adds one unit of Product, appending a new line on first add.
type AddItem struct {
	Product catalog.Product
}

// RemoveItem deletes the line for ProductID. Unknown ids are a no-op.
type RemoveItem struct {
	ProductID int
}

// SetQuantity sets a line's quantity. Quantity <= 0 removes the line; values above MaxQuantity
// are capped. Unknown ids are a no-op.
type SetQuantity struct {
	ProductID int
	Quantity  int
}

// Clear empties the cart.
type Clear struct{}

func (AddItem) op() string { return "add_item" }
func (RemoveItem) op() string { return "remove_item" }
func (SetQuantity) op() string { return "set_quantity" }
func (Clear) op() string { return "clear" }

// Reduce returns the state after applying cmd. It never modifies s.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddItem:
		return addItem(s, c.Product)
	case RemoveItem:
		return removeItem(s, c.ProductID)
	case SetQuantity:
		if c.Quantity <= 0 {
			return removeItem(s, c.ProductID)
		}
		return setQuantity(s, c.ProductID, min(c.Quantity, MaxQuantity))
	case Clear:
		return Empty()
	default:
		return s.clone()
	}
}

func addItem(s State, p catalog.Product) State {
	next := s.clone()
	if i := next.index(p.ID); i >= 0 {
		if next.Lines[i].Quantity < MaxQuantity {
			next.Lines[i].Quantity++
		}
		return next
	}
	next.Lines = append(next.Lines, Line{
		ProductID: p.ID,
		Quantity:  1,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
	})
	return next
}

func removeItem(s State, productID int) State {
	next := s.clone()
	next.Lines = slices.DeleteFunc(next.Lines, func(l Line) bool { return l.ProductID == productID })
	return next
}

func setQuantity(s State, productID, quantity int) State {
	next := s.clone()
	if i := next.index(productID); i >= 0 {
		next.Lines[i].Quantity = quantity
	}
	return next
}

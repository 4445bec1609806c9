package cart

import (
	"testing"

	"github.com/imrishuroy/avenge-storefront/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func product(id int, price string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     "Fragrance",
		Category: "woody",
		Price:    decimal.RequireFromString(price),
		Image:    "/img.jpg",
		Rating:   4.5,
	}
}

func TestAddItemAccumulates(t *testing.T) {
	p := product(1, "245.50")
	s := Empty()
	for i := 1; i <= MaxQuantity; i++ {
		s = Reduce(s, AddItem{Product: p})
		require.Len(t, s.Lines, 1)
		require.Equal(t, i, s.TotalItems())
		want := p.Price.Mul(decimal.NewFromInt(int64(i)))
		require.True(t, want.Equal(s.TotalPrice()), "step %d: got %s want %s", i, s.TotalPrice(), want)
	}
}

func TestAddItemCapsAtMax(t *testing.T) {
	p := product(1, "100")
	s := Empty()
	for i := 0; i < MaxQuantity+3; i++ {
		s = Reduce(s, AddItem{Product: p})
	}
	line, ok := s.Line(1)
	require.True(t, ok)
	require.Equal(t, MaxQuantity, line.Quantity)
	require.Equal(t, MaxQuantity, s.TotalItems())
	require.True(t, decimal.NewFromInt(1000).Equal(s.TotalPrice()))
}

func TestAddSameProductTwiceMakesOneLine(t *testing.T) {
	p := product(7, "315")
	s := Reduce(Reduce(Empty(), AddItem{Product: p}), AddItem{Product: p})
	require.Len(t, s.Lines, 1)
	require.Equal(t, 2, s.Lines[0].Quantity)
}

func TestAddItemSnapshotsProductAndKeepsOrder(t *testing.T) {
	a := product(3, "240")
	b := product(1, "345")
	b.Name = "Midnight Oud"
	b.Category = "oriental"
	b.Image = "/oud.jpg"

	s := Reduce(Reduce(Reduce(Empty(), AddItem{Product: a}), AddItem{Product: b}), AddItem{Product: a})
	require.Equal(t, []int{3, 1}, []int{s.Lines[0].ProductID, s.Lines[1].ProductID})

	line, _ := s.Line(1)
	require.Equal(t, "Midnight Oud", line.Name)
	require.Equal(t, "oriental", line.Category)
	require.Equal(t, "/oud.jpg", line.Image)
	require.True(t, line.Price.Equal(decimal.NewFromInt(345)))
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := Reduce(Empty(), AddItem{Product: product(1, "100")})
	next := Reduce(s, RemoveItem{ProductID: 42})
	require.True(t, s.Equal(next))
	require.Equal(t, s.TotalItems(), next.TotalItems())
	require.True(t, s.TotalPrice().Equal(next.TotalPrice()))
}

func TestRemoveItem(t *testing.T) {
	s := Reduce(Empty(), AddItem{Product: product(1, "100")})
	s = Reduce(s, AddItem{Product: product(2, "50")})
	s = Reduce(s, RemoveItem{ProductID: 1})
	require.Len(t, s.Lines, 1)
	require.Equal(t, 2, s.Lines[0].ProductID)
	require.True(t, decimal.NewFromInt(50).Equal(s.TotalPrice()))
}

func TestSetQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		s := Reduce(Empty(), AddItem{Product: product(1, "100")})
		s = Reduce(s, SetQuantity{ProductID: 1, Quantity: q})
		require.Empty(t, s.Lines, "quantity %d", q)
		require.Equal(t, 0, s.TotalItems())
		require.True(t, s.TotalPrice().IsZero())
	}
}

func TestSetQuantity(t *testing.T) {
	s := Reduce(Empty(), AddItem{Product: product(1, "20")})

	s = Reduce(s, SetQuantity{ProductID: 1, Quantity: 4})
	require.Equal(t, 4, s.TotalItems())
	require.True(t, decimal.NewFromInt(80).Equal(s.TotalPrice()))

	s = Reduce(s, SetQuantity{ProductID: 1, Quantity: 25})
	require.Equal(t, MaxQuantity, s.TotalItems())

	before := s
	s = Reduce(s, SetQuantity{ProductID: 99, Quantity: 3})
	require.True(t, before.Equal(s))
}

func TestClear(t *testing.T) {
	s := Reduce(Empty(), AddItem{Product: product(1, "20")})
	s = Reduce(s, AddItem{Product: product(2, "30")})
	s = Reduce(s, Clear{})
	require.NotNil(t, s.Lines)
	require.Empty(t, s.Lines)
	require.Equal(t, 0, s.TotalItems())
	require.True(t, s.TotalPrice().IsZero())

	require.True(t, Empty().Equal(Reduce(Empty(), Clear{})))
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(Empty(), AddItem{Product: product(1, "20")})
	_ = Reduce(s, AddItem{Product: product(1, "20")})
	_ = Reduce(s, SetQuantity{ProductID: 1, Quantity: 9})
	_ = Reduce(s, RemoveItem{ProductID: 1})
	require.Len(t, s.Lines, 1)
	require.Equal(t, 1, s.Lines[0].Quantity)
}

func TestSummaryFromState(t *testing.T) {
	s := Reduce(Empty(), AddItem{Product: product(1, "50")})
	s = Reduce(s, AddItem{Product: product(1, "50")})

	sum := s.Summary()
	require.True(t, decimal.NewFromInt(100).Equal(sum.Subtotal))
	require.True(t, decimal.NewFromInt(15).Equal(sum.Shipping))
	require.True(t, decimal.RequireFromString("8.00").Equal(sum.Tax))
	require.True(t, decimal.RequireFromString("123.00").Equal(sum.Total))

	empty := Empty().Summary()
	require.True(t, empty.Shipping.IsZero())
	require.True(t, empty.Total.IsZero())
}

// Package catalog serves the read-only fragrance catalog and the listing filter/sort derivation.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

//go:embed products.json
var productsJSON []byte

type Notes struct {
	Top   []string `json:"top"`
	Heart []string `json:"heart"`
	Base  []string `json:"base"`
}

type Product struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Rating          float64         `json:"rating"`
	Image           string          `json:"image"`
	Size            string          `json:"size,omitempty"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Notes           Notes           `json:"notes"`
	Featured        bool            `json:"featured"`
	Bestseller      bool            `json:"bestseller"`
}

// Catalog is an immutable, ordered product list. Order is the listing's "featured" baseline.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// Load parses the embedded product data.
func Load() (*Catalog, error) {
	var doc struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(productsJSON, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return New(doc.Products)
}

// New builds a Catalog from products, rejecting duplicate or non-positive ids.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("product %q has invalid id %d", p.Name, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) ByID(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) ByCategory(category string) []Product {
	return c.collect(func(p Product) bool { return p.Category == category }, 0)
}

// Categories lists the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// Featured returns up to limit featured products; limit <= 0 means no limit.
func (c *Catalog) Featured(limit int) []Product {
	return c.collect(func(p Product) bool { return p.Featured }, limit)
}

func (c *Catalog) Bestsellers(limit int) []Product {
	return c.collect(func(p Product) bool { return p.Bestseller }, limit)
}

// Related returns other products from the same category as p.
func (c *Catalog) Related(p Product, limit int) []Product {
	return c.collect(func(o Product) bool { return o.Category == p.Category && o.ID != p.ID }, limit)
}

func (c *Catalog) collect(keep func(Product) bool, limit int) []Product {
	out := []Product{}
	for _, p := range c.products {
		if limit > 0 && len(out) == limit {
			break
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

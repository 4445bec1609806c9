package catalog

import (
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const CategoryAll = "all"

type PriceBucket string

const (
	PriceAll      PriceBucket = "all"
	PriceUnder250 PriceBucket = "0-250"
	Price250To300 PriceBucket = "250-300"
	Price300To350 PriceBucket = "300-350"
	PriceOver350  PriceBucket = "350+"
)

type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
	SortNameAsc   SortKey = "name-asc"
)

var (
	d250 = decimal.NewFromInt(250)
	d300 = decimal.NewFromInt(300)
	d350 = decimal.NewFromInt(350)
)

// Filter is the listing state encoded in the query string (category, price, sort).
type Filter struct {
	Category string      `json:"category"`
	Price    PriceBucket `json:"price"`
	Sort     SortKey     `json:"sort"`
}

func DefaultFilter() Filter {
	return Filter{Category: CategoryAll, Price: PriceAll, Sort: SortFeatured}
}

// ParseFilter reads category, price and sort from query values. Missing or unknown price and
// sort values fall back to "all" and "featured".
func ParseFilter(values url.Values) Filter {
	f := DefaultFilter()
	if c := strings.TrimSpace(values.Get("category")); c != "" {
		f.Category = c
	}
	switch p := PriceBucket(values.Get("price")); p {
	case PriceUnder250, Price250To300, Price300To350, PriceOver350:
		f.Price = p
	}
	switch s := SortKey(values.Get("sort")); s {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNameAsc:
		f.Sort = s
	}
	return f
}

// Query encodes the non-default parts of f back into query values.
func (f Filter) Query() url.Values {
	v := url.Values{}
	if f.Category != "" && f.Category != CategoryAll {
		v.Set("category", f.Category)
	}
	if f.Price != "" && f.Price != PriceAll {
		v.Set("price", string(f.Price))
	}
	if f.Sort != "" && f.Sort != SortFeatured {
		v.Set("sort", string(f.Sort))
	}
	return v
}

// Matches reports whether p passes the category and price filters.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && f.Category != CategoryAll && p.Category != f.Category {
		return false
	}
	return f.Price.Contains(p.Price)
}

// Contains reports whether price falls in the bucket. Unknown buckets match everything.
func (b PriceBucket) Contains(price decimal.Decimal) bool {
	switch b {
	case PriceUnder250:
		return price.LessThan(d250)
	case Price250To300:
		return price.GreaterThanOrEqual(d250) && price.LessThanOrEqual(d300)
	case Price300To350:
		return price.GreaterThan(d300) && price.LessThanOrEqual(d350)
	case PriceOver350:
		return price.GreaterThan(d350)
	default:
		return true
	}
}

// Apply filters products and then sorts the result. The input slice is not modified.
func Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortNameAsc:
		// collators keep internal buffers, so each call gets its own
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Featured && !out[j].Featured })
	}
	return out
}

package catalog

import (
	"fmt"
	"math"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Filter holds the optional list predicates. Nil fields are not applied;
// set fields are combined conjunctively.
type Filter struct {
	InStock  *bool
	MinPrice *float64
	MaxPrice *float64
}

// Apply returns the products matching every set predicate. The input is
// never mutated and the result is always non-nil.
func (f Filter) Apply(in []Product) []Product {
	out := make([]Product, 0, len(in))
	for _, p := range in {
		if f.match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) match(p Product) bool {
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Page is a 1-indexed pagination request.
type Page struct {
	Number int
	Size   int
}

// Validate rejects out-of-range paging instead of clamping it.
func (p Page) Validate() error {
	if p.Number < 1 {
		return fmt.Errorf("page must be greater than or equal to 1")
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
	}
	return nil
}

// Envelope wraps one page of results with count metadata.
type Envelope struct {
	TotalItems int       `json:"total_items"`
	TotalPages int       `json:"total_pages"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Items      []Product `json:"items"`
}

// Paginate slices items into the requested page. Pages past the end yield
// an empty items list, not an error.
func Paginate(items []Product, pg Page) Envelope {
	total := len(items)
	totalPages := int(math.Ceil(float64(total) / float64(pg.Size)))

	// Out-of-range pages are answered before computing offsets: a huge page
	// number would overflow (pg.Number-1)*pg.Size into a negative index.
	if pg.Number > totalPages {
		return Envelope{
			TotalItems: total,
			TotalPages: totalPages,
			Page:       pg.Number,
			PageSize:   pg.Size,
			Items:      []Product{},
		}
	}

	start := (pg.Number - 1) * pg.Size
	end := start + pg.Size
	if end > total {
		end = total
	}

	return Envelope{
		TotalItems: total,
		TotalPages: totalPages,
		Page:       pg.Number,
		PageSize:   pg.Size,
		Items:      items[start:end],
	}
}

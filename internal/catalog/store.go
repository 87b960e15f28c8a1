package catalog

import (
	"context"
	"errors"
	"time"
)

// Product is the catalog entity. Description and ImageURL are nullable in
// the JSON representation; ID and CreatedAt never change after creation.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	ImageURL    *string   `json:"image_url"`
}

// ProductFields carries the caller-supplied attributes of a new product.
type ProductFields struct {
	Name        string
	Description *string
	Price       float64
	InStock     bool
}

// ProductPatch is a presence-aware partial update: a nil field was omitted
// by the caller and must leave the stored value untouched. An explicit JSON
// null decodes to the same nil pointer, so it cannot clear a field; callers
// wanting to blank Description send an empty string instead.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	InStock     *bool
}

// IsZero reports whether the patch carries no fields at all.
func (p ProductPatch) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.InStock == nil
}

// ErrNotFound indicates an unknown product id.
var ErrNotFound = errors.New("product not found")

// Store owns all product records and their identifier allocation. Identifiers
// are unique, monotonically increasing and never reused within the store's
// lifetime, even after deletion.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, fields ProductFields) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Update(ctx context.Context, id int64, patch ProductPatch) (Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Product, error)
	SetImage(ctx context.Context, id int64, url string) (Product, error)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is one catalog item belonging to a vendor. Prices are stored
// in minor units (cents) to avoid floating point drift.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	VendorID    uuid.UUID  `json:"vendor_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	PriceCents  int64      `json:"price_cents"`
	Stock       int        `json:"stock"`
	LowStockAt  int        `json:"low_stock_at"`
	ImageURL    string     `json:"image_url"`
	ThumbURL    string     `json:"thumb_url"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LowStock reports whether the product has fallen to or below its
// low-stock threshold.
func (p *Product) LowStock() bool {
	return p.Stock <= p.LowStockAt
}

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	VendorID   *uuid.UUID
	CategoryID *uuid.UUID
	Search     string
	LowStock   bool
	ActiveOnly bool
	Limit      int
	Offset     int
}

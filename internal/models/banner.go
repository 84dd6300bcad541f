package models

import (
	"time"

	"github.com/google/uuid"
)

// BannerPlacement identifies where a banner is shown on the storefront.
type BannerPlacement string

const (
	BannerPlacementHome     BannerPlacement = "home"
	BannerPlacementCategory BannerPlacement = "category"
	BannerPlacementSidebar  BannerPlacement = "sidebar"
)

// Banner is a promotional image with an optional active window. A nil
// StartsAt/EndsAt means no bound on that side.
type Banner struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	ImageURL  string          `json:"image_url"`
	ThumbURL  string          `json:"thumb_url"`
	LinkURL   string          `json:"link_url"`
	Placement BannerPlacement `json:"placement"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	EndsAt    *time.Time      `json:"ends_at,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Live reports whether the banner should currently be displayed.
func (b *Banner) Live(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && now.After(*b.EndsAt) {
		return false
	}
	return true
}

// Package models defines the data structures shared between stores,
// handlers, and the preview renderer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a catalog category. A nil ParentID marks a main category;
// categories with a parent are subcategories.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VendorTemplate is one vendor's storefront template record. Document is
// the working copy the editor mutates; Published is the snapshot serving
// live storefront traffic (nil until the first deploy). Saves replace
// Document wholesale — there is no partial-update or merge path, and the
// last writer wins.
type VendorTemplate struct {
	VendorID     uuid.UUID       `json:"vendor_id"`
	Name         string          `json:"name"`
	Document     json.RawMessage `json:"document"`
	Published    json.RawMessage `json:"published,omitempty"`
	PublishedURL *string         `json:"published_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorStatus tracks a vendor through the onboarding flow.
type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "pending"
	VendorStatusApproved VendorStatus = "approved"
	VendorStatusRejected VendorStatus = "rejected"
)

// Vendor is a storefront owner. APIToken is the bearer credential the
// management console attaches to vendor-scoped requests; it is issued
// on approval.
type Vendor struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Email     string       `json:"email"`
	Status    VendorStatus `json:"status"`
	APIToken  string       `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Approved reports whether the vendor may publish a storefront.
func (v *Vendor) Approved() bool {
	return v.Status == VendorStatusApproved
}

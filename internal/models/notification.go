package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind categorizes dashboard notifications.
type NotificationKind string

const (
	NotificationVendorApplied    NotificationKind = "vendor_applied"
	NotificationTemplateDeployed NotificationKind = "template_deployed"
	NotificationLowStock         NotificationKind = "low_stock"
	NotificationImportFinished   NotificationKind = "import_finished"
)

// Notification is one dashboard feed entry. VendorID is nil for
// platform-level events.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	VendorID  *uuid.UUID       `json:"vendor_id,omitempty"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

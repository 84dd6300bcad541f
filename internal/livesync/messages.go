// Package livesync relays editor/preview messages over WebSockets so an
// open preview pane tracks template edits without a page reload.
//
// Each connection joins a room keyed by vendor and page. Editors publish
// update notices; the hub debounces them and fans the latest one out to
// the preview connections in the room. Previews publish selection
// events (a click on a section in the rendered page), which relay
// straight back to the editors.
package livesync

import (
	"encoding/json"
	"fmt"
)

// Message types carried on the wire.
const (
	// TypePreviewUpdate tells preview clients the template document
	// changed and the page should be re-fetched.
	TypePreviewUpdate = "template-preview-update"
	// TypeEditorSelect tells editor clients which section or component
	// was clicked inside the preview frame.
	TypeEditorSelect = "template-editor-select"
)

// Envelope is the single wire format for both directions. Fields beyond
// Type, VendorID, and Page are populated per message type.
type Envelope struct {
	Type     string `json:"type"`
	VendorID string `json:"vendor_id"`
	Page     string `json:"page"`

	// Seq is assigned by the hub on preview updates. It only ever
	// increases within a room; clients discard anything older than the
	// last value they applied.
	Seq uint64 `json:"seq,omitempty"`

	// SectionOrder accompanies preview updates when the home page
	// section order changed.
	SectionOrder []string `json:"section_order,omitempty"`

	// SectionID and ComponentID accompany editor-select messages.
	SectionID   string `json:"section_id,omitempty"`
	ComponentID string `json:"component_id,omitempty"`

	// Payload carries optional type-specific extras.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the envelope is routable.
func (e *Envelope) Validate() error {
	switch e.Type {
	case TypePreviewUpdate, TypeEditorSelect:
	default:
		return fmt.Errorf("unknown message type %q", e.Type)
	}
	if e.VendorID == "" {
		return fmt.Errorf("missing vendor_id")
	}
	if e.Page == "" {
		return fmt.Errorf("missing page")
	}
	return nil
}

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"vendorpress/internal/livesync"
	"vendorpress/internal/models"
)

// The editor's manual sync is the recovery path for a preview that
// missed an update. It must deliver a fresh refresh envelope even when
// no edit is sitting in the debounce window.
func TestSyncNotifiesIdlePreview(t *testing.T) {
	hub := livesync.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	templates := NewTemplates(nil, nil, nil, nil, nil, hub)

	vendor := &models.Vendor{ID: uuid.New(), Status: models.VendorStatusApproved}
	sub := hub.Subscribe(vendor.ID.String(), "home", livesync.RolePreview)
	defer hub.Unsubscribe(sub)

	req := asVendor(httptest.NewRequest(http.MethodPost, "/api/template/sync", nil), vendor)
	rr := httptest.NewRecorder()
	templates.Sync(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	select {
	case env := <-sub.C:
		if env.Type != livesync.TypePreviewUpdate {
			t.Errorf("type: got %q, want %q", env.Type, livesync.TypePreviewUpdate)
		}
		if env.Seq == 0 {
			t.Error("delivered update carries no sequence number")
		}
		if env.Page != "home" {
			t.Errorf("page: got %q, want home", env.Page)
		}
	case <-time.After(time.Second):
		t.Fatal("no preview update delivered after sync")
	}
}

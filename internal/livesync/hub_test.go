package livesync

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testHub(debounce time.Duration) *Hub {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.debounce = debounce
	return h
}

func update(vendorID, page string, payload string) Envelope {
	return Envelope{
		Type:     TypePreviewUpdate,
		VendorID: vendorID,
		Page:     page,
		Payload:  json.RawMessage(payload),
	}
}

func recv(t *testing.T, sub *Subscriber) Envelope {
	t.Helper()
	select {
	case env := <-sub.C:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Envelope{}
	}
}

func assertQuiet(t *testing.T, sub *Subscriber, d time.Duration) {
	t.Helper()
	select {
	case env := <-sub.C:
		t.Fatalf("unexpected message: %+v", env)
	case <-time.After(d):
	}
}

func TestDebounceCoalescesUpdates(t *testing.T) {
	h := testHub(50 * time.Millisecond)
	preview := h.Subscribe("v1", "home", RolePreview)
	defer h.Unsubscribe(preview)

	h.Publish(update("v1", "home", `{"rev":1}`))
	h.Publish(update("v1", "home", `{"rev":2}`))
	h.Publish(update("v1", "home", `{"rev":3}`))

	env := recv(t, preview)
	if string(env.Payload) != `{"rev":3}` {
		t.Errorf("got payload %s, want the latest update", env.Payload)
	}
	if env.Seq != 1 {
		t.Errorf("got seq %d, want 1", env.Seq)
	}
	assertQuiet(t, preview, 100*time.Millisecond)
}

func TestSeqIncreases(t *testing.T) {
	h := testHub(5 * time.Millisecond)
	preview := h.Subscribe("v1", "home", RolePreview)
	defer h.Unsubscribe(preview)

	var last uint64
	for i := 0; i < 3; i++ {
		h.Publish(update("v1", "home", `{}`))
		env := recv(t, preview)
		if env.Seq <= last {
			t.Fatalf("seq did not increase: %d after %d", env.Seq, last)
		}
		last = env.Seq
	}
}

func TestFlushSkipsDebounce(t *testing.T) {
	h := testHub(5 * time.Second)
	preview := h.Subscribe("v1", "home", RolePreview)
	defer h.Unsubscribe(preview)

	h.Publish(update("v1", "home", `{"rev":1}`))
	h.Flush("v1", "home")

	env := recv(t, preview)
	if string(env.Payload) != `{"rev":1}` {
		t.Errorf("got payload %s", env.Payload)
	}

	// Nothing pending: a second flush is a no-op.
	h.Flush("v1", "home")
	assertQuiet(t, preview, 50*time.Millisecond)
}

func TestSelectRelaysToEditorsOnly(t *testing.T) {
	h := testHub(5 * time.Millisecond)
	editor := h.Subscribe("v1", "home", RoleEditor)
	preview := h.Subscribe("v1", "home", RolePreview)
	defer h.Unsubscribe(editor)
	defer h.Unsubscribe(preview)

	h.Publish(Envelope{
		Type:      TypeEditorSelect,
		VendorID:  "v1",
		Page:      "home",
		SectionID: "hero",
	})

	env := recv(t, editor)
	if env.SectionID != "hero" {
		t.Errorf("got section %q, want hero", env.SectionID)
	}
	assertQuiet(t, preview, 50*time.Millisecond)
}

func TestRoomsAreIsolated(t *testing.T) {
	h := testHub(5 * time.Millisecond)
	home := h.Subscribe("v1", "home", RolePreview)
	about := h.Subscribe("v1", "about", RolePreview)
	other := h.Subscribe("v2", "home", RolePreview)
	defer h.Unsubscribe(home)
	defer h.Unsubscribe(about)
	defer h.Unsubscribe(other)

	h.Publish(update("v1", "home", `{}`))

	recv(t, home)
	assertQuiet(t, about, 50*time.Millisecond)
	assertQuiet(t, other, 50*time.Millisecond)
}

func TestUpdatesNotEchoedToEditors(t *testing.T) {
	h := testHub(5 * time.Millisecond)
	editor := h.Subscribe("v1", "home", RoleEditor)
	defer h.Unsubscribe(editor)

	h.Publish(update("v1", "home", `{}`))
	assertQuiet(t, editor, 50*time.Millisecond)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := testHub(5 * time.Millisecond)
	sub := h.Subscribe("v1", "home", RolePreview)
	h.Unsubscribe(sub)

	if _, ok := <-sub.C; ok {
		t.Error("channel still open after unsubscribe")
	}
	// Idempotent.
	h.Unsubscribe(sub)
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr bool
	}{
		{"valid update", Envelope{Type: TypePreviewUpdate, VendorID: "v1", Page: "home"}, false},
		{"valid select", Envelope{Type: TypeEditorSelect, VendorID: "v1", Page: "home"}, false},
		{"unknown type", Envelope{Type: "ping", VendorID: "v1", Page: "home"}, true},
		{"missing vendor", Envelope{Type: TypePreviewUpdate, Page: "home"}, true},
		{"missing page", Envelope{Type: TypePreviewUpdate, VendorID: "v1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.env.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

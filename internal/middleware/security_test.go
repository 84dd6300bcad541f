package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecureHeaders(t *testing.T) {
	handler := SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>storefront</html>"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/s/demo-outfitters", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	for name, want := range securityHeaders {
		if got := rr.Header().Get(name); got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}

	// The editor's preview iframe depends on same-origin framing being
	// allowed; DENY would blank the editor.
	if got := rr.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options: got %q, want SAMEORIGIN", got)
	}
}

func TestSecureHeadersApplyToErrors(t *testing.T) {
	handler := SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/s/no-such-vendor", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options on error response: got %q, want nosniff", got)
	}
}

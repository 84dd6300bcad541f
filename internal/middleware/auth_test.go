package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

type fakeResolver struct {
	vendors map[string]*models.Vendor
}

func (f *fakeResolver) FindByToken(token string) (*models.Vendor, error) {
	return f.vendors[token], nil
}

func authedHandler(t *testing.T, wantVendor uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vendor := VendorFromCtx(r.Context())
		if vendor == nil {
			t.Error("vendor missing from context")
		} else if vendor.ID != wantVendor {
			t.Errorf("wrong vendor in context: %s", vendor.ID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth(t *testing.T) {
	approved := &models.Vendor{ID: uuid.New(), Status: models.VendorStatusApproved, APIToken: "good-token"}
	pending := &models.Vendor{ID: uuid.New(), Status: models.VendorStatusPending, APIToken: "pending-token"}
	resolver := &fakeResolver{vendors: map[string]*models.Vendor{
		"good-token":    approved,
		"pending-token": pending,
	}}

	t.Run("valid token resolves vendor", func(t *testing.T) {
		handler := BearerAuth(resolver)(authedHandler(t, approved.ID))
		req := httptest.NewRequest(http.MethodGet, "/api/template", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	deny := func(t *testing.T, req *http.Request) {
		t.Helper()
		handler := BearerAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "" {
			t.Errorf("401 must not redirect, got Location %q", loc)
		}
	}

	t.Run("missing header", func(t *testing.T) {
		deny(t, httptest.NewRequest(http.MethodGet, "/api/template", nil))
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/template", nil)
		req.Header.Set("Authorization", "Bearer nope")
		deny(t, req)
	})

	t.Run("unapproved vendor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/template", nil)
		req.Header.Set("Authorization", "Bearer pending-token")
		deny(t, req)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/template", nil)
		req.Header.Set("Authorization", "Basic good-token")
		deny(t, req)
	})
}

func TestAdminOnly(t *testing.T) {
	handler := AdminOnly("admin-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("correct token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/vendors", nil)
		req.Header.Set("Authorization", "Bearer admin-secret")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/vendors", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("empty configured token denies everything", func(t *testing.T) {
		open := AdminOnly("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/vendors", nil)
		req.Header.Set("Authorization", "Bearer ")
		rr := httptest.NewRecorder()
		open.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})
}

func TestVendorFromCtxEmpty(t *testing.T) {
	if VendorFromCtx(context.Background()) != nil {
		t.Error("expected nil vendor from bare context")
	}
}

package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"vendorpress/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// VendorKey is the context key for the authenticated vendor.
	VendorKey contextKey = "vendor"
)

// TokenResolver looks up a vendor by API token. Satisfied by
// store.VendorStore.
type TokenResolver interface {
	FindByToken(token string) (*models.Vendor, error)
}

// BearerAuth resolves the Authorization bearer token to an approved
// vendor and stores it in the request context. An unresolvable token is
// a 401, logged but never redirected; this is an API surface, not a
// login flow.
func BearerAuth(vendors TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				slog.Info("unauthorized request", "path", r.URL.Path, "reason", "missing bearer token")
				unauthorized(w)
				return
			}

			vendor, err := vendors.FindByToken(token)
			if err != nil {
				slog.Error("token lookup failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if vendor == nil || !vendor.Approved() {
				slog.Info("unauthorized request", "path", r.URL.Path, "reason", "unknown or unapproved token")
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), VendorKey, vendor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly guards platform-admin endpoints with the configured admin
// token.
func AdminOnly(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				slog.Info("unauthorized admin request", "path", r.URL.Path)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VendorFromCtx returns the authenticated vendor, or nil outside a
// BearerAuth-wrapped handler.
func VendorFromCtx(ctx context.Context) *models.Vendor {
	vendor, _ := ctx.Value(VendorKey).(*models.Vendor)
	return vendor
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"unauthorized"}`))
}

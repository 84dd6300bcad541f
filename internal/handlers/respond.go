// Package handlers contains the HTTP handlers for the VendorPress API
// and the public storefront. Handlers are grouped by concern and
// receive their dependencies through the handler struct.
//
// API responses use a uniform envelope: successes are
// {"success": true, "data": ...}, failures are {"message": "..."}.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"vendorpress/internal/middleware"
	"vendorpress/internal/models"
	"vendorpress/internal/store"
)

// vendorFrom returns the authenticated vendor from the request context.
// Writes a 401 and returns nil when the route was wired without
// BearerAuth.
func vendorFrom(w http.ResponseWriter, r *http.Request) *models.Vendor {
	vendor := middleware.VendorFromCtx(r.Context())
	if vendor == nil {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
	}
	return vendor
}

// validate is the shared request validator.
var validate = validator.New()

// notify records a dashboard notification. Failures are logged rather
// than surfaced: the triggering operation already succeeded, and a
// lost feed entry must not fail it.
func notify(s *store.NotificationStore, vendorID *uuid.UUID, kind models.NotificationKind, message string) {
	if err := s.Add(vendorID, kind, message); err != nil {
		slog.Warn("record notification failed",
			"kind", kind,
			"error", err,
		)
	}
}

type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dataEnvelope{Success: true, Data: data}); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondMessage writes an error envelope.
func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(messageEnvelope{Message: message}); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondInternal logs the error and writes a generic 500. The concrete
// error never reaches the client.
func respondInternal(w http.ResponseWriter, action string, err error) {
	slog.Error(action, "error", err)
	respondMessage(w, http.StatusInternalServerError, "internal server error")
}

const maxBodyBytes = 1 << 20

// decodeJSON decodes and validates a request body into dst. dst must be
// a pointer to a struct with validate tags.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

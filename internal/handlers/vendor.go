package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorpress/internal/document"
	"vendorpress/internal/models"
	"vendorpress/internal/slug"
	"vendorpress/internal/store"
)

// Vendors groups the vendor onboarding handlers. Apply is public; the
// rest sit behind the admin token.
type Vendors struct {
	vendors       *store.VendorStore
	templates     *store.TemplateStore
	notifications *store.NotificationStore
}

// NewVendors creates the vendor handler group.
func NewVendors(vendors *store.VendorStore, templates *store.TemplateStore, notifications *store.NotificationStore) *Vendors {
	return &Vendors{vendors: vendors, templates: templates, notifications: notifications}
}

type applyRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Slug  string `json:"slug" validate:"max=200"`
}

// Apply registers a pending vendor. Approval and the API token come
// later, from an admin.
func (v *Vendors) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	s := req.Slug
	if s == "" {
		s = slug.Generate(req.Name)
	} else if !slug.Valid(s) {
		s = slug.Generate(s)
	}
	existing, err := v.vendors.FindBySlug(s)
	if err != nil {
		respondInternal(w, "check vendor slug", err)
		return
	}
	if existing != nil {
		respondMessage(w, http.StatusConflict, "a vendor with this name already exists")
		return
	}

	vendor, err := v.vendors.Apply(&models.Vendor{
		Name:  req.Name,
		Email: req.Email,
		Slug:  s,
	})
	if err != nil {
		respondInternal(w, "apply vendor", err)
		return
	}
	notify(v.notifications, &vendor.ID, models.NotificationVendorApplied,
		"New vendor application: "+vendor.Name)
	respondData(w, http.StatusCreated, vendor)
}

// List returns vendors, optionally filtered by ?status=.
func (v *Vendors) List(w http.ResponseWriter, r *http.Request) {
	status := models.VendorStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.VendorStatusPending, models.VendorStatusApproved, models.VendorStatusRejected:
	default:
		respondMessage(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	vendors, err := v.vendors.List(status)
	if err != nil {
		respondInternal(w, "list vendors", err)
		return
	}
	respondData(w, http.StatusOK, vendors)
}

// approvedVendor is the approval response: the vendor plus its API
// token, which is otherwise never serialized.
type approvedVendor struct {
	models.Vendor
	APIToken string `json:"api_token"`
}

// Approve transitions a vendor to approved, issues their API token, and
// seeds a default storefront template so the editor opens on something
// renderable.
func (v *Vendors) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid vendor id")
		return
	}
	vendor, err := v.vendors.Approve(id)
	if err != nil {
		respondInternal(w, "approve vendor", err)
		return
	}
	if vendor == nil {
		respondMessage(w, http.StatusNotFound, "vendor not found")
		return
	}

	if err := v.seedTemplate(vendor); err != nil {
		respondInternal(w, "seed vendor template", err)
		return
	}

	respondData(w, http.StatusOK, approvedVendor{Vendor: *vendor, APIToken: vendor.APIToken})
}

// Reject transitions a vendor to rejected and revokes any issued token.
func (v *Vendors) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid vendor id")
		return
	}
	vendor, err := v.vendors.Reject(id)
	if err != nil {
		respondInternal(w, "reject vendor", err)
		return
	}
	if vendor == nil {
		respondMessage(w, http.StatusNotFound, "vendor not found")
		return
	}
	respondData(w, http.StatusOK, vendor)
}

func (v *Vendors) seedTemplate(vendor *models.Vendor) error {
	existing, err := v.templates.Find(vendor.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	doc := document.Default()
	doc.Name = vendor.Name
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = v.templates.Save(vendor.ID, vendor.Name, raw)
	return err
}

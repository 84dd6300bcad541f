package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorpress/internal/models"
	"vendorpress/internal/store"
)

// Dashboard groups the admin overview handlers.
type Dashboard struct {
	categories    *store.CategoryStore
	products      *store.ProductStore
	templates     *store.TemplateStore
	vendors       *store.VendorStore
	notifications *store.NotificationStore
}

// NewDashboard creates the dashboard handler group.
func NewDashboard(categories *store.CategoryStore, products *store.ProductStore, templates *store.TemplateStore, vendors *store.VendorStore, notifications *store.NotificationStore) *Dashboard {
	return &Dashboard{
		categories:    categories,
		products:      products,
		templates:     templates,
		vendors:       vendors,
		notifications: notifications,
	}
}

type dashboardSummary struct {
	MainCategories      int                   `json:"main_categories"`
	Subcategories       int                   `json:"subcategories"`
	Products            int                   `json:"products"`
	Templates           int                   `json:"templates"`
	PendingVendors      int                   `json:"pending_vendors"`
	UnreadNotifications int                   `json:"unread_notifications"`
	Notifications       []models.Notification `json:"notifications"`
}

// Summary returns the entity counts and the recent notification feed.
func (d *Dashboard) Summary(w http.ResponseWriter, r *http.Request) {
	var s dashboardSummary
	var err error

	if s.MainCategories, s.Subcategories, err = d.categories.Count(); err != nil {
		respondInternal(w, "count categories", err)
		return
	}
	if s.Products, err = d.products.Count(); err != nil {
		respondInternal(w, "count products", err)
		return
	}
	if s.Templates, err = d.templates.Count(); err != nil {
		respondInternal(w, "count templates", err)
		return
	}
	if s.PendingVendors, err = d.vendors.CountPending(); err != nil {
		respondInternal(w, "count pending vendors", err)
		return
	}
	if s.UnreadNotifications, err = d.notifications.CountUnread(); err != nil {
		respondInternal(w, "count notifications", err)
		return
	}
	if s.Notifications, err = d.notifications.ListRecent(10); err != nil {
		respondInternal(w, "list notifications", err)
		return
	}
	respondData(w, http.StatusOK, s)
}

// Notifications returns the recent notification feed. ?limit= caps the
// list, defaulting to 20.
func (d *Dashboard) Notifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	notifications, err := d.notifications.ListRecent(limit)
	if err != nil {
		respondInternal(w, "list notifications", err)
		return
	}
	respondData(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one notification as read.
func (d *Dashboard) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := d.notifications.MarkRead(id); err != nil {
		respondInternal(w, "mark notification read", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"read": id.String()})
}

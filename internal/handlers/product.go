package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorpress/internal/models"
	"vendorpress/internal/slug"
	"vendorpress/internal/store"
)

// Products groups the product and inventory handlers. Vendor-scoped
// routes resolve the vendor from the bearer token; admin routes may
// filter by any vendor.
type Products struct {
	products      *store.ProductStore
	notifications *store.NotificationStore
}

// NewProducts creates the product handler group.
func NewProducts(products *store.ProductStore, notifications *store.NotificationStore) *Products {
	return &Products{products: products, notifications: notifications}
}

// listFilter builds a product filter from query parameters. vendorID is
// non-nil on vendor-scoped routes and pins the filter to that vendor.
func listFilter(r *http.Request, vendorID *uuid.UUID) (models.ProductFilter, error) {
	q := r.URL.Query()
	f := models.ProductFilter{
		VendorID:   vendorID,
		Search:     q.Get("search"),
		LowStock:   q.Get("low_stock") == "true",
		ActiveOnly: q.Get("active") == "true",
	}
	if raw := q.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, err
		}
		f.CategoryID = &id
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Limit = n
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Offset = n
		}
	}
	return f, nil
}

// List returns the authenticated vendor's products, filtered and
// paginated by query parameters.
func (p *Products) List(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	f, err := listFilter(r, &vendor.ID)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category filter")
		return
	}
	products, err := p.products.List(f)
	if err != nil {
		respondInternal(w, "list products", err)
		return
	}
	respondData(w, http.StatusOK, products)
}

// Get returns one of the vendor's products.
func (p *Products) Get(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	product := p.ownedProduct(w, r, vendor.ID)
	if product == nil {
		return
	}
	respondData(w, http.StatusOK, product)
}

type productRequest struct {
	Name        string  `json:"name" validate:"required,max=300"`
	Slug        string  `json:"slug" validate:"max=300"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	PriceCents  int64   `json:"price_cents" validate:"min=0"`
	Stock       int     `json:"stock" validate:"min=0"`
	LowStockAt  int     `json:"low_stock_at" validate:"min=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	ThumbURL    string  `json:"thumb_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

func (req *productRequest) apply(product *models.Product) error {
	product.Name = req.Name
	product.Slug = req.Slug
	if product.Slug == "" {
		product.Slug = slug.Generate(req.Name)
	} else if !slug.Valid(product.Slug) {
		product.Slug = slug.Generate(product.Slug)
	}
	product.Description = req.Description
	product.PriceCents = req.PriceCents
	product.Stock = req.Stock
	product.LowStockAt = req.LowStockAt
	product.ImageURL = req.ImageURL
	product.ThumbURL = req.ThumbURL
	product.IsActive = true
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.CategoryID = nil
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return err
		}
		product.CategoryID = &id
	}
	return nil
}

// Create adds a product to the vendor's catalog.
func (p *Products) Create(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	product := &models.Product{VendorID: vendor.ID}
	if err := req.apply(product); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category_id")
		return
	}
	created, err := p.products.Create(product)
	if err != nil {
		respondInternal(w, "create product", err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// Update replaces a product's editable fields. A stock level at or
// below the low-stock threshold records a notification.
func (p *Products) Update(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	product := p.ownedProduct(w, r, vendor.ID)
	if product == nil {
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	wasLow := product.LowStock()
	if err := req.apply(product); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category_id")
		return
	}
	if err := p.products.Update(product); err != nil {
		respondInternal(w, "update product", err)
		return
	}
	if product.LowStock() && !wasLow {
		notify(p.notifications, &vendor.ID, models.NotificationLowStock,
			"Low stock: "+product.Name)
	}
	respondData(w, http.StatusOK, product)
}

// Delete removes a product from the vendor's catalog.
func (p *Products) Delete(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	product := p.ownedProduct(w, r, vendor.ID)
	if product == nil {
		return
	}
	if err := p.products.Delete(product.ID); err != nil {
		respondInternal(w, "delete product", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": product.ID.String()})
}

// inventorySummary is the stock overview for the inventory view.
type inventorySummary struct {
	Total    int              `json:"total"`
	LowStock int              `json:"low_stock"`
	Products []models.Product `json:"products"`
}

// Inventory returns the vendor's stock listing with totals. The
// low_stock query parameter narrows the listing to products at or below
// their threshold.
func (p *Products) Inventory(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	f, err := listFilter(r, &vendor.ID)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category filter")
		return
	}
	products, err := p.products.List(f)
	if err != nil {
		respondInternal(w, "list inventory", err)
		return
	}
	total, low, err := p.products.CountByVendor(vendor.ID)
	if err != nil {
		respondInternal(w, "count inventory", err)
		return
	}
	respondData(w, http.StatusOK, inventorySummary{
		Total:    total,
		LowStock: low,
		Products: products,
	})
}

// ownedProduct loads the product from the URL and checks it belongs to
// the vendor. Writes the error response and returns nil otherwise.
func (p *Products) ownedProduct(w http.ResponseWriter, r *http.Request, vendorID uuid.UUID) *models.Product {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid product id")
		return nil
	}
	product, err := p.products.FindByID(id)
	if err != nil {
		respondInternal(w, "find product", err)
		return nil
	}
	if product == nil || product.VendorID != vendorID {
		respondMessage(w, http.StatusNotFound, "product not found")
		return nil
	}
	return product
}

// Package router sets up the HTTP routes and middleware chains for the
// VendorPress server: the admin API, the vendor API, the sync
// WebSocket, and the public storefront pages.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vendorpress/internal/handlers"
	"vendorpress/internal/livesync"
	"vendorpress/internal/middleware"
	"vendorpress/internal/store"
	"vendorpress/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	AdminToken string
	RateLimit  int

	Vendors *store.VendorStore
	Hub     *livesync.Hub

	Catalog   *handlers.Catalog
	Products  *handlers.Products
	Banners   *handlers.Banners
	VendorsH  *handlers.Vendors
	Templates *handlers.Templates
	Dashboard *handlers.Dashboard
	Public    *handlers.Public
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Static assets shared by the storefront and the preview frame.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	// Presigned-upload requests are the cheapest way to fill a bucket;
	// they get their own limiter.
	signLimiter := middleware.NewRateLimiter(d.RateLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Vendor application is the one unauthenticated API call.
		r.Post("/vendors/apply", d.VendorsH.Apply)

		// Platform admin — guarded by the admin token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly(d.AdminToken))

			r.Get("/dashboard", d.Dashboard.Summary)
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", d.Dashboard.Notifications)
				r.Post("/{id}/read", d.Dashboard.MarkNotificationRead)
			})

			r.Route("/vendors", func(r chi.Router) {
				r.Get("/", d.VendorsH.List)
				r.Post("/{id}/approve", d.VendorsH.Approve)
				r.Post("/{id}/reject", d.VendorsH.Reject)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Catalog.ListCategories)
				r.Post("/", d.Catalog.CreateCategory)
				r.Put("/{id}", d.Catalog.UpdateCategory)
				r.Delete("/{id}", d.Catalog.DeleteCategory)
				r.Get("/{id}/subcategories", d.Catalog.ListSubcategories)
			})

			r.Route("/import", func(r chi.Router) {
				r.Get("/template", d.Catalog.DownloadImportTemplate)
				r.Post("/catalog", d.Catalog.ImportCatalog)
			})

			r.Route("/banners", func(r chi.Router) {
				r.Get("/", d.Banners.List)
				r.Post("/", d.Banners.Create)
				r.Put("/{id}", d.Banners.Update)
				r.Delete("/{id}", d.Banners.Delete)
			})
		})

		// Vendor console — bearer token resolves to the vendor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(d.Vendors))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", d.Products.List)
				r.Post("/", d.Products.Create)
				r.Get("/{id}", d.Products.Get)
				r.Put("/{id}", d.Products.Update)
				r.Delete("/{id}", d.Products.Delete)
			})
			r.Get("/inventory", d.Products.Inventory)

			r.Route("/template", func(r chi.Router) {
				r.Get("/", d.Templates.Get)
				r.Put("/", d.Templates.Save)
				r.Patch("/", d.Templates.Patch)
				r.Post("/sync", d.Templates.Sync)
				r.Post("/deploy", d.Templates.Deploy)
			})

			r.Group(func(r chi.Router) {
				r.Use(signLimiter.Middleware)
				r.Post("/assets/sign", d.Templates.SignAsset)
			})
		})
	})

	// Preview sync channel. Connections declare their room and role via
	// query parameters; envelopes for other rooms are dropped.
	r.Get("/ws/preview", d.Hub.ServeWS)

	// Editor preview frames — working document, edit-mode markup.
	r.Route("/preview/{vendorID}", func(r chi.Router) {
		r.Get("/", d.Public.Preview)
		r.Get("/p/{pageSlug}", d.Public.Preview)
		r.Get("/{page}", d.Public.Preview)
	})

	// Public storefront pages — published snapshot, cached.
	r.Route("/s/{vendorSlug}", func(r chi.Router) {
		r.Get("/", d.Public.Storefront)
		r.Get("/p/{pageSlug}", d.Public.Storefront)
		r.Get("/{page}", d.Public.Storefront)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

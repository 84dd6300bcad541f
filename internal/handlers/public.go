package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorpress/internal/cache"
	"vendorpress/internal/document"
	"vendorpress/internal/models"
	"vendorpress/internal/preview"
	"vendorpress/internal/store"
)

// Public serves the rendered storefront pages and the editor's live
// preview frames.
type Public struct {
	renderer  *preview.Renderer
	vendors   *store.VendorStore
	templates *store.TemplateStore
	products  *store.ProductStore
	categories *store.CategoryStore
	banners   *store.BannerStore
	pageCache *cache.PageCache
}

// NewPublic creates the public handler group. pageCache may be nil;
// pages are then rendered on every request.
func NewPublic(renderer *preview.Renderer, vendors *store.VendorStore, templates *store.TemplateStore, products *store.ProductStore, categories *store.CategoryStore, banners *store.BannerStore, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:   renderer,
		vendors:    vendors,
		templates:  templates,
		products:   products,
		categories: categories,
		banners:    banners,
		pageCache:  pageCache,
	}
}

// Storefront serves a vendor's published page. Rendered pages are
// cached per vendor and page until the next deploy invalidates them.
func (p *Public) Storefront(w http.ResponseWriter, r *http.Request) {
	vendor, err := p.vendors.FindBySlug(chi.URLParam(r, "vendorSlug"))
	if err != nil {
		respondInternal(w, "find vendor", err)
		return
	}
	if vendor == nil || !vendor.Approved() {
		http.NotFound(w, r)
		return
	}

	page := chi.URLParam(r, "page")
	if page == "" {
		page = "home"
	}
	if pageSlug := chi.URLParam(r, "pageSlug"); pageSlug != "" {
		page = "p/" + pageSlug
	}

	var cacheKey string
	if p.pageCache != nil {
		cacheKey = cache.PageKey(vendor.ID, page)
		if html, ok := p.pageCache.Get(r.Context(), cacheKey); ok {
			writeHTML(w, html)
			return
		}
	}

	html, status := p.render(w, r, vendor, page, false)
	if html == nil {
		if status == http.StatusNotFound {
			http.NotFound(w, r)
		}
		return
	}
	if p.pageCache != nil {
		p.pageCache.Set(r.Context(), cacheKey, html)
	}
	writeHTML(w, html)
}

// Preview serves the editor's iframe: always the working document,
// always fresh, with edit-mode markup and the sync client injected.
func (p *Public) Preview(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "vendorID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	vendor, err := p.vendors.FindByID(vendorID)
	if err != nil {
		respondInternal(w, "find vendor", err)
		return
	}
	if vendor == nil {
		http.NotFound(w, r)
		return
	}

	page := chi.URLParam(r, "page")
	if page == "" {
		page = "home"
	}
	if pageSlug := chi.URLParam(r, "pageSlug"); pageSlug != "" {
		page = "p/" + pageSlug
	}

	html, status := p.render(w, r, vendor, page, true)
	if html == nil {
		if status == http.StatusNotFound {
			http.NotFound(w, r)
		}
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, html)
}

// render assembles the page data and renders one page. Returns the
// markup, or nil with a status: 404 when the page does not resolve, 0
// when the error response was already written.
func (p *Public) render(w http.ResponseWriter, r *http.Request, vendor *models.Vendor, page string, editMode bool) ([]byte, int) {
	template, err := p.templates.Find(vendor.ID)
	if err != nil {
		respondInternal(w, "find template", err)
		return nil, 0
	}

	raw := []byte(nil)
	if template != nil {
		// Live traffic serves the published snapshot; the working copy
		// serves the preview and vendors who have not deployed yet.
		if !editMode && len(template.Published) > 0 {
			raw = template.Published
		} else {
			raw = template.Document
		}
	}

	var doc *document.Document
	if len(raw) > 0 {
		doc, err = document.Parse(raw)
		if err != nil {
			respondInternal(w, "parse template document", err)
			return nil, 0
		}
	} else {
		doc = document.Default()
		doc.Name = vendor.Name
	}

	products, err := p.products.List(models.ProductFilter{VendorID: &vendor.ID, ActiveOnly: true})
	if err != nil {
		respondInternal(w, "list products", err)
		return nil, 0
	}
	categories, err := p.categories.List()
	if err != nil {
		respondInternal(w, "list categories", err)
		return nil, 0
	}
	banners, err := p.banners.List()
	if err != nil {
		respondInternal(w, "list banners", err)
		return nil, 0
	}

	data := &preview.Data{
		Doc:        doc,
		Vendor:     vendor,
		Products:   products,
		Categories: categories,
		Banners:    banners,
		EditMode:   editMode,
		VendorID:   vendor.ID.String(),
		BasePath:   "/s/" + vendor.Slug,
		Year:       time.Now().Year(),
	}
	if editMode {
		data.BasePath = "/preview/" + vendor.ID.String()
	}

	var html []byte
	switch {
	case page == "home":
		html, err = p.renderer.Home(data, doc.Components.HomePage.SectionOrder)
	case page == "about":
		html, err = p.renderer.About(data)
	case page == "contact":
		html, err = p.renderer.Contact(data)
	case len(page) > 2 && page[:2] == "p/":
		html, err = p.renderer.CustomPage(data, page[2:])
	default:
		return nil, http.StatusNotFound
	}
	if err != nil {
		respondInternal(w, "render storefront page", err)
		return nil, 0
	}
	if html == nil {
		return nil, http.StatusNotFound
	}
	return html, http.StatusOK
}

func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Package preview renders storefront pages (home, about, contact, and
// custom pages) from a template document plus pre-fetched catalog data.
// Rendering is pure: no mutation, no network calls. Every text field
// falls back to placeholder copy when empty, so a freshly initialized
// document still renders a complete page.
//
// In edit mode the markup carries section identifiers and the sync
// client script, so clicks inside the preview frame can be relayed back
// to the editor as selection events.
package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"vendorpress/internal/document"
	"vendorpress/internal/markdown"
	"vendorpress/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Home page section names, in their fixed default order.
const (
	SectionNameHero        = "hero"
	SectionNameDescription = "description"
	SectionNameProducts    = "products"
)

// DefaultHomeOrder is the order home sections render in when the
// document supplies none.
var DefaultHomeOrder = []string{SectionNameHero, SectionNameDescription, SectionNameProducts}

// homeSections is the set of known home section names; unknown names in
// a supplied order render nothing.
var homeSections = map[string]bool{
	SectionNameHero:        true,
	SectionNameDescription: true,
	SectionNameProducts:    true,
}

// ResolveHomeOrder normalizes a caller-supplied section order: unknown
// names are dropped, an empty order falls back to the default, and the
// products section is always appended when omitted — a storefront
// without its products is never rendered.
func ResolveHomeOrder(order []string) []string {
	if len(order) == 0 {
		return DefaultHomeOrder
	}

	var resolved []string
	seen := map[string]bool{}
	for _, name := range order {
		if !homeSections[name] || seen[name] {
			continue
		}
		seen[name] = true
		resolved = append(resolved, name)
	}
	if len(resolved) == 0 {
		return DefaultHomeOrder
	}
	if !seen[SectionNameProducts] {
		resolved = append(resolved, SectionNameProducts)
	}
	return resolved
}

// Data bundles everything a page render needs. Products and categories
// are fetched by the caller; the renderer never queries anything.
type Data struct {
	Doc        *document.Document
	Vendor     *models.Vendor
	Products   []models.Product
	Categories []models.Category
	Banners    []models.Banner
	EditMode   bool
	VendorID   string
	Page       string
	BasePath   string
	Year       int
}

// sectionData is the execution context for one section template.
type sectionData struct {
	*Data
	Section *document.PageSection
}

// Renderer compiles the embedded page templates once and renders pages
// from documents.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded storefront templates.
func New() (*Renderer, error) {
	t, err := template.New("storefront").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse storefront templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

var funcMap = template.FuncMap{
	// fb substitutes placeholder copy for empty document fields. The
	// preview is always fully rendered, even for a fresh document.
	"fb": func(value, placeholder string) string {
		if strings.TrimSpace(value) == "" {
			return placeholder
		}
		return value
	},
	// money formats minor units as a price string.
	"money": func(cents int64) string {
		return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
	},
	// md renders a Markdown field. Conversion failures fall back to the
	// escaped source text.
	"md": func(source string) template.HTML {
		html, err := markdown.ToHTML(source)
		if err != nil {
			return template.HTML(template.HTMLEscapeString(source))
		}
		return template.HTML(html)
	},
	// dget reads a string out of a custom section's free-form data bag,
	// with a placeholder fallback. It also accepts elements of dlist
	// results, which arrive as plain any values.
	"dget": func(data any, key, placeholder string) string {
		m, _ := data.(map[string]any)
		if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
		return placeholder
	},
	// dlist reads a list out of a custom section's data bag.
	"dlist": func(data map[string]any, key string) []any {
		if v, ok := data[key].([]any); ok {
			return v
		}
		return nil
	},
	// sectionStyle builds an inline style attribute from a section's
	// style overrides.
	"sectionStyle": func(s *document.SectionStyle) template.CSS {
		if s == nil {
			return ""
		}
		var parts []string
		if s.TextColor != "" {
			parts = append(parts, "color:"+s.TextColor)
		}
		if s.BackgroundColor != "" {
			parts = append(parts, "background-color:"+s.BackgroundColor)
		}
		if s.FontSize != "" {
			parts = append(parts, "font-size:"+s.FontSize)
		}
		return template.CSS(strings.Join(parts, ";"))
	},
	// elementStyle builds an inline style attribute from a per-element
	// color/size override.
	"elementStyle": func(s *document.ElementStyle) template.CSS {
		if s == nil {
			return ""
		}
		var parts []string
		if s.Color != "" {
			parts = append(parts, "color:"+s.Color)
		}
		if s.Size != "" {
			parts = append(parts, "font-size:"+s.Size)
		}
		return template.CSS(strings.Join(parts, ";"))
	},
}

// Home renders the storefront landing page. order overrides the default
// section order; see ResolveHomeOrder for the normalization rules.
func (r *Renderer) Home(d *Data, order []string) ([]byte, error) {
	d.normalize("home")

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "layout_top", d); err != nil {
		return nil, fmt.Errorf("render home: %w", err)
	}
	for _, name := range ResolveHomeOrder(order) {
		if err := r.tmpl.ExecuteTemplate(&buf, "home_"+name, d); err != nil {
			return nil, fmt.Errorf("render home section %s: %w", name, err)
		}
	}
	if err := r.tmpl.ExecuteTemplate(&buf, "layout_bottom", d); err != nil {
		return nil, fmt.Errorf("render home: %w", err)
	}
	return buf.Bytes(), nil
}

// About renders the about-us page.
func (r *Renderer) About(d *Data) ([]byte, error) {
	d.normalize("about")
	return r.renderPage("about_page", d)
}

// Contact renders the contact page.
func (r *Renderer) Contact(d *Data) ([]byte, error) {
	d.normalize("contact")
	return r.renderPage("contact_page", d)
}

// CustomPage renders a vendor-defined page by slug. Outside edit mode
// only published pages resolve. Returns nil if the slug is unknown,
// letting the handler produce its own 404.
func (r *Renderer) CustomPage(d *Data, pageSlug string) ([]byte, error) {
	var page *document.CustomPage
	for i := range d.Doc.Components.CustomPages {
		p := &d.Doc.Components.CustomPages[i]
		if p.Slug == pageSlug && (p.Published || d.EditMode) {
			page = p
			break
		}
	}
	if page == nil {
		return nil, nil
	}

	d.normalize("p/" + pageSlug)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "layout_top", d); err != nil {
		return nil, fmt.Errorf("render custom page: %w", err)
	}
	for i := range page.Sections {
		section := &page.Sections[i]
		name := "section_" + string(section.Type)
		if r.tmpl.Lookup(name) == nil {
			// Unknown section types render nothing.
			continue
		}
		if err := r.tmpl.ExecuteTemplate(&buf, name, &sectionData{Data: d, Section: section}); err != nil {
			return nil, fmt.Errorf("render section %s: %w", section.Type, err)
		}
	}
	if err := r.tmpl.ExecuteTemplate(&buf, "layout_bottom", d); err != nil {
		return nil, fmt.Errorf("render custom page: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderPage(name string, d *Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "layout_top", d); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	if err := r.tmpl.ExecuteTemplate(&buf, name, d); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	if err := r.tmpl.ExecuteTemplate(&buf, "layout_bottom", d); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// normalize fills derived fields before template execution.
func (d *Data) normalize(page string) {
	d.Page = page
	if d.Year == 0 {
		d.Year = time.Now().Year()
	}
}

// LiveBanners filters the banners down to those currently displayable.
func (d *Data) LiveBanners() []models.Banner {
	now := time.Now()
	var live []models.Banner
	for _, b := range d.Banners {
		if b.Live(now) {
			live = append(live, b)
		}
	}
	return live
}

// MapEmbedURL returns an OpenStreetMap embed URL for the contact page
// location, or "" when the document has no usable coordinates.
func (d *Data) MapEmbedURL() string {
	lat, long, ok := d.Doc.Components.ContactPage.SectionTwo.Location()
	if !ok {
		return ""
	}
	const delta = 0.01
	return fmt.Sprintf(
		"https://www.openstreetmap.org/export/embed.html?bbox=%f,%f,%f,%f&layer=mapnik&marker=%f,%f",
		long-delta, lat-delta, long+delta, lat+delta, lat, long,
	)
}

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"vendorpress/internal/database"
	"vendorpress/internal/document"
	"vendorpress/internal/livesync"
	"vendorpress/internal/middleware"
	"vendorpress/internal/models"
	"vendorpress/internal/preview"
	"vendorpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "vendorpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "vendorpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv bundles the stores and handler groups for one test run.
type testEnv struct {
	db        *sql.DB
	vendors   *store.VendorStore
	templates *store.TemplateStore
	hub       *livesync.Hub

	templatesH *Templates
	vendorsH   *Vendors
	publicH    *Public
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)

	vendors := store.NewVendorStore(db)
	templates := store.NewTemplateStore(db)
	products := store.NewProductStore(db)
	categories := store.NewCategoryStore(db)
	banners := store.NewBannerStore(db)
	notifications := store.NewNotificationStore(db)
	hub := livesync.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	renderer, err := preview.New()
	if err != nil {
		t.Fatalf("preview.New: %v", err)
	}

	return &testEnv{
		db:         db,
		vendors:    vendors,
		templates:  templates,
		hub:        hub,
		templatesH: NewTemplates(templates, notifications, nil, nil, nil, hub),
		vendorsH:   NewVendors(vendors, templates, notifications),
		publicH:    NewPublic(renderer, vendors, templates, products, categories, banners, nil),
	}
}

// approvedVendorFixture creates and approves a vendor, with cleanup.
func approvedVendorFixture(t *testing.T, env *testEnv, name, slug string) *models.Vendor {
	t.Helper()
	vendor, err := env.vendors.Apply(&models.Vendor{Name: name, Slug: slug, Email: slug + "@example.com"})
	if err != nil {
		t.Fatalf("apply vendor: %v", err)
	}
	t.Cleanup(func() {
		env.db.Exec(`DELETE FROM vendors WHERE id = $1`, vendor.ID)
	})
	approved, err := env.vendors.Approve(vendor.ID)
	if err != nil {
		t.Fatalf("approve vendor: %v", err)
	}
	return approved
}

// asVendor attaches the vendor to the request context the way
// middleware.BearerAuth would.
func asVendor(r *http.Request, vendor *models.Vendor) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.VendorKey, vendor)
	return r.WithContext(ctx)
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %s", rr.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestTemplateGetReturnsDefaultWhenUnsaved(t *testing.T) {
	env := newTestEnv(t)
	vendor := approvedVendorFixture(t, env, "Unsaved Goods", "unsaved-goods")
	// Approval seeds a template through the handler path only; wipe it
	// to exercise the default fallback.
	if err := env.templates.Delete(vendor.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}

	req := asVendor(httptest.NewRequest(http.MethodGet, "/api/template", nil), vendor)
	rr := httptest.NewRecorder()
	env.templatesH.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	var tpl models.VendorTemplate
	decodeData(t, rr, &tpl)
	doc, err := document.Parse(tpl.Document)
	if err != nil {
		t.Fatalf("returned document does not parse: %v", err)
	}
	if doc.Name != vendor.Name {
		t.Errorf("default document name = %q, want vendor name", doc.Name)
	}
}

func TestTemplateSaveAndPatchFlow(t *testing.T) {
	env := newTestEnv(t)
	vendor := approvedVendorFixture(t, env, "Patchworks", "patchworks")

	doc := document.Default()
	doc.Name = "Patchworks"
	raw, _ := json.Marshal(doc)
	body, _ := json.Marshal(map[string]any{"document": json.RawMessage(raw), "page": "home"})

	req := asVendor(httptest.NewRequest(http.MethodPut, "/api/template", bytes.NewReader(body)), vendor)
	rr := httptest.NewRecorder()
	env.templatesH.Save(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("save status: got %d, body %s", rr.Code, rr.Body.String())
	}

	patch, _ := json.Marshal(map[string]any{
		"op":    "set",
		"path":  []string{"components", "home_page", "header_text"},
		"value": "Summer Sale",
		"page":  "home",
	})
	req = asVendor(httptest.NewRequest(http.MethodPatch, "/api/template", bytes.NewReader(patch)), vendor)
	rr = httptest.NewRecorder()
	env.templatesH.Patch(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch status: got %d, body %s", rr.Code, rr.Body.String())
	}

	stored, err := env.templates.Find(vendor.ID)
	if err != nil || stored == nil {
		t.Fatalf("find template: %v", err)
	}
	got, err := document.Parse(stored.Document)
	if err != nil {
		t.Fatalf("parse stored document: %v", err)
	}
	if got.Components.HomePage.HeaderText != "Summer Sale" {
		t.Errorf("header_text = %q, want Summer Sale", got.Components.HomePage.HeaderText)
	}
}

func TestStorefrontRendersWorkingDocumentBeforeDeploy(t *testing.T) {
	env := newTestEnv(t)
	vendor := approvedVendorFixture(t, env, "Fresh Shop", "fresh-shop")

	doc := document.Default()
	doc.Name = "Fresh Shop"
	doc.Components.HomePage.HeaderText = "Grand Opening"
	raw, _ := json.Marshal(doc)
	if _, err := env.templates.Save(vendor.ID, "Fresh Shop", raw); err != nil {
		t.Fatalf("save template: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/s/{vendorSlug}", env.publicH.Storefront)
	req := httptest.NewRequest(http.MethodGet, "/s/fresh-shop", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Grand Opening")) {
		t.Error("storefront missing saved hero headline")
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("preview-sync.js")) {
		t.Error("public storefront must not carry the edit-mode sync script")
	}
}

func TestVendorApplyConflictOnDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	approvedVendorFixture(t, env, "Dupe Goods", "dupe-goods")

	body, _ := json.Marshal(map[string]string{
		"name":  "Dupe Goods",
		"email": "second@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/vendors/apply", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	env.vendorsH.Apply(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409 (body %s)", rr.Code, rr.Body.String())
	}
}

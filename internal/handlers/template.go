package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vendorpress/internal/cache"
	"vendorpress/internal/deploy"
	"vendorpress/internal/document"
	"vendorpress/internal/livesync"
	"vendorpress/internal/models"
	"vendorpress/internal/storage"
	"vendorpress/internal/store"
)

// Templates groups the storefront template editor handlers: document
// load/save, path-level patches, asset upload credentials, and the
// deploy flow.
type Templates struct {
	templates     *store.TemplateStore
	notifications *store.NotificationStore
	storageClient *storage.Client
	pageCache     *cache.PageCache
	deployer      *deploy.Deployer
	hub           *livesync.Hub
}

// NewTemplates creates the template handler group. storageClient,
// pageCache, and deployer may be nil when the matching backend is not
// configured.
func NewTemplates(templates *store.TemplateStore, notifications *store.NotificationStore, storageClient *storage.Client, pageCache *cache.PageCache, deployer *deploy.Deployer, hub *livesync.Hub) *Templates {
	return &Templates{
		templates:     templates,
		notifications: notifications,
		storageClient: storageClient,
		pageCache:     pageCache,
		deployer:      deployer,
		hub:           hub,
	}
}

// Get returns the vendor's working template document. Vendors without a
// saved template get a freshly initialized default document; the editor
// always opens on something renderable.
func (t *Templates) Get(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	template, err := t.templates.Find(vendor.ID)
	if err != nil {
		respondInternal(w, "find template", err)
		return
	}
	if template == nil {
		doc := document.Default()
		doc.Name = vendor.Name
		raw, err := json.Marshal(doc)
		if err != nil {
			respondInternal(w, "marshal default template", err)
			return
		}
		template = &models.VendorTemplate{
			VendorID: vendor.ID,
			Name:     vendor.Name,
			Document: raw,
		}
	}
	respondData(w, http.StatusOK, template)
}

type saveRequest struct {
	Name     string          `json:"name" validate:"max=200"`
	Document json.RawMessage `json:"document" validate:"required"`
	Page     string          `json:"page"`
}

// Save replaces the vendor's working document wholesale. The last
// writer wins; there is no merge. Connected previews are notified
// through the sync hub.
func (t *Templates) Save(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := document.Parse(req.Document)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid template document: "+err.Error())
		return
	}
	name := req.Name
	if name == "" {
		name = doc.Name
	}

	saved, err := t.templates.Save(vendor.ID, name, req.Document)
	if err != nil {
		respondInternal(w, "save template", err)
		return
	}
	t.pushUpdate(vendor.ID, req.Page, nil)
	respondData(w, http.StatusOK, saved)
}

// patchRequest is one path-level edit. Paths address the document tree
// by JSON key, with numeric segments indexing into lists.
type patchRequest struct {
	Op           string          `json:"op" validate:"required,oneof=set append remove duplicate"`
	Path         []string        `json:"path" validate:"required,min=1"`
	Value        json.RawMessage `json:"value"`
	Index        *int            `json:"index"`
	Page         string          `json:"page"`
	SectionOrder []string        `json:"section_order"`
}

// Patch applies a single edit to the working document: set a field,
// or append / remove / duplicate a list row. The stored document is
// updated and previews are notified.
func (t *Templates) Patch(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	var req patchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	template, err := t.templates.Find(vendor.ID)
	if err != nil {
		respondInternal(w, "find template", err)
		return
	}
	if template == nil {
		respondMessage(w, http.StatusNotFound, "no template to patch; save one first")
		return
	}

	doc, err := document.Parse(template.Document)
	if err != nil {
		respondInternal(w, "parse stored template", err)
		return
	}
	tree, err := doc.Tree()
	if err != nil {
		respondInternal(w, "expand template tree", err)
		return
	}

	patched, err := applyPatch(tree, &req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	// Round-trip through the typed document so a patch can never
	// persist a shape the renderer cannot read.
	next, err := document.FromTree(patched)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "patch produced an invalid document: "+err.Error())
		return
	}
	raw, err := json.Marshal(next)
	if err != nil {
		respondInternal(w, "marshal patched template", err)
		return
	}

	saved, err := t.templates.Save(vendor.ID, template.Name, raw)
	if err != nil {
		respondInternal(w, "save patched template", err)
		return
	}
	t.pushUpdate(vendor.ID, req.Page, req.SectionOrder)
	respondData(w, http.StatusOK, saved)
}

func applyPatch(tree map[string]any, req *patchRequest) (map[string]any, error) {
	path := document.Path(req.Path)
	var result any
	var err error

	switch req.Op {
	case "set":
		var value any
		if len(req.Value) > 0 {
			if err := json.Unmarshal(req.Value, &value); err != nil {
				return nil, fmt.Errorf("invalid patch value: %w", err)
			}
		}
		result, err = document.SetPath(tree, path, value)
	case "append":
		var row any
		if len(req.Value) == 0 {
			return nil, fmt.Errorf("append requires a value")
		}
		if err := json.Unmarshal(req.Value, &row); err != nil {
			return nil, fmt.Errorf("invalid patch value: %w", err)
		}
		result, err = document.AppendRow(tree, path, row)
	case "remove":
		if req.Index == nil {
			return nil, fmt.Errorf("remove requires an index")
		}
		result, err = document.RemoveRow(tree, path, *req.Index)
	case "duplicate":
		if req.Index == nil {
			return nil, fmt.Errorf("duplicate requires an index")
		}
		result, err = document.DuplicateRow(tree, path, *req.Index)
	}
	if err != nil {
		return nil, err
	}
	patched, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("patch replaced the document root")
	}
	return patched, nil
}

// pushUpdate notifies the vendor's open previews. An empty page means
// the editor did not say which page it is on; home is assumed.
func (t *Templates) pushUpdate(vendorID uuid.UUID, page string, sectionOrder []string) {
	if page == "" {
		page = "home"
	}
	t.hub.Publish(livesync.Envelope{
		Type:         livesync.TypePreviewUpdate,
		VendorID:     vendorID.String(),
		Page:         page,
		SectionOrder: sectionOrder,
	})
}

// Sync re-posts the current document to the vendor's previews,
// bypassing the debounce. Backs the editor's explicit "sync and
// refresh" action, which must work even when no edit is in flight —
// it is the recovery path for a preview that missed an update.
func (t *Templates) Sync(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	page := r.URL.Query().Get("page")
	if page == "" {
		page = "home"
	}
	t.pushUpdate(vendor.ID, page, nil)
	t.hub.Flush(vendor.ID.String(), page)
	respondData(w, http.StatusOK, map[string]string{"status": "synced"})
}

type signAssetRequest struct {
	Filename    string `json:"filename" validate:"required,max=300"`
	ContentType string `json:"content_type" validate:"required,max=100"`
}

// allowedAssetTypes are the upload content types the editor may request
// credentials for.
var allowedAssetTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// SignAsset returns a presigned PUT credential for a direct-to-bucket
// upload. The object key is namespaced per vendor; the client uploads
// the bytes itself and writes the resulting public URL into the
// document.
func (t *Templates) SignAsset(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	if t.storageClient == nil {
		respondMessage(w, http.StatusServiceUnavailable, "asset storage is not configured")
		return
	}
	var req signAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if !allowedAssetTypes[req.ContentType] {
		respondMessage(w, http.StatusBadRequest, "unsupported content type")
		return
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	key := fmt.Sprintf("vendors/%s/%s%s", vendor.ID, uuid.New(), ext)
	cred, err := t.storageClient.PresignUpload(r.Context(), key, req.ContentType, 15*time.Minute)
	if err != nil {
		respondInternal(w, "presign upload", err)
		return
	}
	respondData(w, http.StatusOK, cred)
}

// Deploy triggers a storefront build, streams the build log to
// completion, and on success promotes the working document to the
// published snapshot and records the published URL. The vendor's cached
// pages are invalidated so the next request re-renders.
func (t *Templates) Deploy(w http.ResponseWriter, r *http.Request) {
	vendor := vendorFrom(w, r)
	if vendor == nil {
		return
	}
	if t.deployer == nil {
		respondMessage(w, http.StatusServiceUnavailable, "deploys are not configured")
		return
	}
	template, err := t.templates.Find(vendor.ID)
	if err != nil {
		respondInternal(w, "find template", err)
		return
	}
	if template == nil {
		respondMessage(w, http.StatusConflict, "no template to deploy; save one first")
		return
	}

	result, err := t.deployer.Run(r.Context(), vendor.ID)
	if err != nil {
		respondInternal(w, "run deploy", err)
		return
	}
	if result.URL == "" {
		respondMessage(w, http.StatusBadGateway, "deploy finished without a published URL")
		return
	}

	if _, err := t.templates.Publish(vendor.ID, result.URL); err != nil {
		respondInternal(w, "publish template", err)
		return
	}
	if t.pageCache != nil {
		t.pageCache.InvalidateVendor(r.Context(), vendor.ID)
	}
	notify(t.notifications, &vendor.ID, models.NotificationTemplateDeployed,
		"Storefront deployed: "+result.URL)
	respondData(w, http.StatusOK, result)
}

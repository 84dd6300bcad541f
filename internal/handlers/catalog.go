package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorpress/internal/importer"
	"vendorpress/internal/models"
	"vendorpress/internal/slug"
	"vendorpress/internal/store"
)

// Catalog groups the category handlers, including bulk import.
type Catalog struct {
	categories    *store.CategoryStore
	notifications *store.NotificationStore
}

// NewCatalog creates the catalog handler group.
func NewCatalog(categories *store.CategoryStore, notifications *store.NotificationStore) *Catalog {
	return &Catalog{categories: categories, notifications: notifications}
}

// ListCategories returns all main categories. Subcategories are fetched
// per parent via ListSubcategories.
func (c *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categories.List()
	if err != nil {
		respondInternal(w, "list categories", err)
		return
	}
	respondData(w, http.StatusOK, categories)
}

// ListSubcategories returns the children of one category.
func (c *Catalog) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	parentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}
	children, err := c.categories.ListChildren(parentID)
	if err != nil {
		respondInternal(w, "list subcategories", err)
		return
	}
	respondData(w, http.StatusOK, children)
}

type categoryRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Slug        string  `json:"slug" validate:"max=200"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

func (req *categoryRequest) toModel() (*models.Category, error) {
	c := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(req.Name)
	} else if !slug.Valid(c.Slug) {
		c.Slug = slug.Generate(c.Slug)
	}
	if req.ParentID != nil {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, err
		}
		c.ParentID = &id
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	return c, nil
}

// CreateCategory creates a main category or, with parent_id set, a
// subcategory.
func (c *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := req.toModel()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid parent_id")
		return
	}
	if category.ParentID != nil {
		parent, err := c.categories.FindByID(*category.ParentID)
		if err != nil {
			respondInternal(w, "find parent category", err)
			return
		}
		if parent == nil {
			respondMessage(w, http.StatusBadRequest, "parent category not found")
			return
		}
	}

	created, err := c.categories.Create(category)
	if err != nil {
		respondInternal(w, "create category", err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// UpdateCategory updates name, slug, description, image, or active flag.
func (c *Catalog) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}
	existing, err := c.categories.FindByID(id)
	if err != nil {
		respondInternal(w, "find category", err)
		return
	}
	if existing == nil {
		respondMessage(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := req.toModel()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid parent_id")
		return
	}
	updated.ID = id
	if err := c.categories.Update(updated); err != nil {
		respondInternal(w, "update category", err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

// DeleteCategory removes an empty category. Categories that still hold
// products are refused.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := c.categories.Delete(id); err != nil {
		if errors.Is(err, store.ErrCategoryInUse) {
			respondMessage(w, http.StatusConflict, "category still has products")
			return
		}
		respondInternal(w, "delete category", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

// DownloadImportTemplate serves the fixed-header CSV template for bulk
// category import.
func (c *Catalog) DownloadImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="category-import-template.csv"`)
	w.Write(importer.TemplateCSV())
}

// ImportCatalog accepts a .csv or .xlsx upload, creates the category
// hierarchy it describes, and returns the import summary.
func (c *Catalog) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	const maxImportBytes = 10 << 20
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	rows, summary, err := importer.ParseCatalog(file, header.Filename)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, row := range rows {
		if err := c.importRow(row); err != nil {
			summary.FailedRows = append(summary.FailedRows, importer.RowIssue{
				Line: row.Line, Reason: err.Error(),
			})
		}
	}

	notify(c.notifications, nil, models.NotificationImportFinished,
		"Catalog import finished: "+header.Filename)
	respondData(w, http.StatusOK, summary)
}

// importRow ensures the row's hierarchy exists, creating missing levels
// and reusing existing ones by slug.
func (c *Catalog) importRow(row importer.Row) error {
	main, err := c.ensureCategory(row.Main, nil)
	if err != nil {
		return err
	}
	if row.Category == "" {
		return nil
	}
	cat, err := c.ensureCategory(row.Category, &main.ID)
	if err != nil {
		return err
	}
	if row.Subcategory == "" {
		return nil
	}
	_, err = c.ensureCategory(row.Subcategory, &cat.ID)
	return err
}

func (c *Catalog) ensureCategory(name string, parentID *uuid.UUID) (*models.Category, error) {
	s := slug.Generate(name)
	existing, err := c.categories.FindBySlug(s)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return c.categories.Create(&models.Category{
		Name:     name,
		Slug:     s,
		ParentID: parentID,
		IsActive: true,
	})
}

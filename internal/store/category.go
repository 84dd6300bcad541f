// Package store contains the data access layer: one store struct per
// table, raw SQL, and error wrapping. Not-found is reported as (nil, nil).
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

// ErrCategoryInUse is returned by Delete when products still reference
// the category.
var ErrCategoryInUse = errors.New("category still referenced by products")

// CategoryStore handles category and subcategory database operations.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore creates a new CategoryStore with the given database connection.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, parent_id, name, slug, description, image_url, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(
		&c.ID, &c.ParentID, &c.Name, &c.Slug, &c.Description,
		&c.ImageURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all categories, main categories first, then by name.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY parent_id NULLS FIRST, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// ListChildren returns the subcategories of the given parent, in name order.
func (s *CategoryStore) ListChildren(parentID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+`
		FROM categories WHERE parent_id = $1
		ORDER BY name
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// FindByID retrieves a category by its UUID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories WHERE slug = $1
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category. ParentID nil creates a main category.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	created, err := scanCategory(s.db.QueryRow(`
		INSERT INTO categories (parent_id, name, slug, description, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns+`
	`, c.ParentID, c.Name, c.Slug, c.Description, c.ImageURL, c.IsActive))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Update modifies a category's editable fields.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, image_url = $4,
			is_active = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Slug, c.Description, c.ImageURL, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Refuses when products still reference it;
// subcategories cascade at the database level.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	var productCount int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&productCount)
	if err != nil {
		return fmt.Errorf("delete category: count products: %w", err)
	}
	if productCount > 0 {
		return fmt.Errorf("delete category: %w", ErrCategoryInUse)
	}

	result, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("cannot delete: category not found")
	}
	return nil
}

// Count returns the number of categories, split main/sub.
func (s *CategoryStore) Count() (main, sub int, err error) {
	err = s.db.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE parent_id IS NULL),
			COUNT(*) FILTER (WHERE parent_id IS NOT NULL)
		FROM categories
	`).Scan(&main, &sub)
	if err != nil {
		return 0, 0, fmt.Errorf("count categories: %w", err)
	}
	return main, sub, nil
}

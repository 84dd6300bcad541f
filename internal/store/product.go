package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

// ProductStore handles product database operations.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore with the given database connection.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, vendor_id, category_id, name, slug, description,
	price_cents, stock, low_stock_at, image_url, thumb_url, is_active,
	created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID, &p.VendorID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.PriceCents, &p.Stock, &p.LowStockAt, &p.ImageURL, &p.ThumbURL,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns products matching the filter, newest first. The filter's
// Limit defaults to 50 and is capped at 200.
func (s *ProductStore) List(f models.ProductFilter) ([]models.Product, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.VendorID != nil {
		add("vendor_id = $%d", *f.VendorID)
	}
	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.Search != "" {
		add("name ILIKE $%d", "%"+f.Search+"%")
	}
	if f.LowStock {
		conds = append(conds, "stock <= low_stock_at")
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit)
	limitArg := len(args)
	args = append(args, offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`
		SELECT %s FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, productColumns, where, limitArg, offsetArg)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// FindByID retrieves a product by its UUID. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRow(`
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// Create inserts a new product.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	created, err := scanProduct(s.db.QueryRow(`
		INSERT INTO products (vendor_id, category_id, name, slug, description,
			price_cents, stock, low_stock_at, image_url, thumb_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+productColumns+`
	`, p.VendorID, p.CategoryID, p.Name, p.Slug, p.Description,
		p.PriceCents, p.Stock, p.LowStockAt, p.ImageURL, p.ThumbURL, p.IsActive))
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// Update modifies a product's editable fields.
func (s *ProductStore) Update(p *models.Product) error {
	_, err := s.db.Exec(`
		UPDATE products SET
			category_id = $1, name = $2, slug = $3, description = $4,
			price_cents = $5, stock = $6, low_stock_at = $7,
			image_url = $8, thumb_url = $9, is_active = $10, updated_at = NOW()
		WHERE id = $11
	`, p.CategoryID, p.Name, p.Slug, p.Description, p.PriceCents,
		p.Stock, p.LowStockAt, p.ImageURL, p.ThumbURL, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a product by ID.
func (s *ProductStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("cannot delete: product not found")
	}
	return nil
}

// CountByVendor returns total and low-stock product counts for a vendor.
func (s *ProductStore) CountByVendor(vendorID uuid.UUID) (total, lowStock int, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE stock <= low_stock_at)
		FROM products WHERE vendor_id = $1
	`, vendorID).Scan(&total, &lowStock)
	if err != nil {
		return 0, 0, fmt.Errorf("count products: %w", err)
	}
	return total, lowStock, nil
}

// Count returns the total number of products.
func (s *ProductStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

// BannerStore handles banner database operations.
type BannerStore struct {
	db *sql.DB
}

// NewBannerStore creates a new BannerStore with the given database connection.
func NewBannerStore(db *sql.DB) *BannerStore {
	return &BannerStore{db: db}
}

const bannerColumns = `id, title, image_url, thumb_url, link_url, placement,
	starts_at, ends_at, is_active, created_at, updated_at`

func scanBanner(row interface{ Scan(...any) error }) (*models.Banner, error) {
	b := &models.Banner{}
	err := row.Scan(
		&b.ID, &b.Title, &b.ImageURL, &b.ThumbURL, &b.LinkURL, &b.Placement,
		&b.StartsAt, &b.EndsAt, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all banners, newest first.
func (s *BannerStore) List() ([]models.Banner, error) {
	rows, err := s.db.Query(`
		SELECT ` + bannerColumns + ` FROM banners ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, *b)
	}
	return banners, rows.Err()
}

// FindByID retrieves a banner by its UUID. Returns nil if not found.
func (s *BannerStore) FindByID(id uuid.UUID) (*models.Banner, error) {
	b, err := scanBanner(s.db.QueryRow(`
		SELECT `+bannerColumns+` FROM banners WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find banner by id: %w", err)
	}
	return b, nil
}

// Create inserts a new banner.
func (s *BannerStore) Create(b *models.Banner) (*models.Banner, error) {
	created, err := scanBanner(s.db.QueryRow(`
		INSERT INTO banners (title, image_url, thumb_url, link_url, placement,
			starts_at, ends_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+bannerColumns+`
	`, b.Title, b.ImageURL, b.ThumbURL, b.LinkURL, b.Placement,
		b.StartsAt, b.EndsAt, b.IsActive))
	if err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	return created, nil
}

// Update modifies a banner's editable fields.
func (s *BannerStore) Update(b *models.Banner) error {
	_, err := s.db.Exec(`
		UPDATE banners SET
			title = $1, image_url = $2, thumb_url = $3, link_url = $4,
			placement = $5, starts_at = $6, ends_at = $7, is_active = $8,
			updated_at = NOW()
		WHERE id = $9
	`, b.Title, b.ImageURL, b.ThumbURL, b.LinkURL, b.Placement,
		b.StartsAt, b.EndsAt, b.IsActive, b.ID)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	return nil
}

// Delete removes a banner by ID.
func (s *BannerStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("cannot delete: banner not found")
	}
	return nil
}

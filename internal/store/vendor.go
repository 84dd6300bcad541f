package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

// VendorStore handles vendor database operations, including the
// onboarding status transitions and API token issuance.
type VendorStore struct {
	db *sql.DB
}

// NewVendorStore creates a new VendorStore with the given database connection.
func NewVendorStore(db *sql.DB) *VendorStore {
	return &VendorStore{db: db}
}

const vendorColumns = `id, name, slug, email, status, COALESCE(api_token, ''), created_at, updated_at`

func scanVendor(row interface{ Scan(...any) error }) (*models.Vendor, error) {
	v := &models.Vendor{}
	err := row.Scan(
		&v.ID, &v.Name, &v.Slug, &v.Email, &v.Status, &v.APIToken,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List returns vendors, optionally filtered by status, newest first.
func (s *VendorStore) List(status models.VendorStatus) ([]models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, *v)
	}
	return vendors, rows.Err()
}

// FindByID retrieves a vendor by its UUID. Returns nil if not found.
func (s *VendorStore) FindByID(id uuid.UUID) (*models.Vendor, error) {
	v, err := scanVendor(s.db.QueryRow(`
		SELECT `+vendorColumns+` FROM vendors WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor by id: %w", err)
	}
	return v, nil
}

// FindBySlug retrieves a vendor by slug. Returns nil if not found.
func (s *VendorStore) FindBySlug(slug string) (*models.Vendor, error) {
	v, err := scanVendor(s.db.QueryRow(`
		SELECT `+vendorColumns+` FROM vendors WHERE slug = $1
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor by slug: %w", err)
	}
	return v, nil
}

// FindByToken resolves a bearer API token to its vendor. Returns nil if
// the token is unknown.
func (s *VendorStore) FindByToken(token string) (*models.Vendor, error) {
	if token == "" {
		return nil, nil
	}
	v, err := scanVendor(s.db.QueryRow(`
		SELECT `+vendorColumns+` FROM vendors WHERE api_token = $1
	`, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor by token: %w", err)
	}
	return v, nil
}

// Apply creates a new vendor in pending status. No token is issued until
// approval.
func (s *VendorStore) Apply(v *models.Vendor) (*models.Vendor, error) {
	created, err := scanVendor(s.db.QueryRow(`
		INSERT INTO vendors (name, slug, email, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+vendorColumns+`
	`, v.Name, v.Slug, v.Email))
	if err != nil {
		return nil, fmt.Errorf("vendor apply: %w", err)
	}
	return created, nil
}

// Approve transitions a pending vendor to approved and issues its API
// token. Approving an already-approved vendor keeps the existing token.
func (s *VendorStore) Approve(id uuid.UUID) (*models.Vendor, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("vendor approve: %w", err)
	}

	v, err := scanVendor(s.db.QueryRow(`
		UPDATE vendors SET
			status = 'approved',
			api_token = COALESCE(api_token, $1),
			updated_at = NOW()
		WHERE id = $2
		RETURNING `+vendorColumns+`
	`, token, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vendor approve: %w", err)
	}
	return v, nil
}

// Reject transitions a vendor to rejected and revokes any issued token.
func (s *VendorStore) Reject(id uuid.UUID) (*models.Vendor, error) {
	v, err := scanVendor(s.db.QueryRow(`
		UPDATE vendors SET status = 'rejected', api_token = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + vendorColumns + `
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vendor reject: %w", err)
	}
	return v, nil
}

// CountPending returns the number of vendors awaiting review.
func (s *VendorStore) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM vendors WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending vendors: %w", err)
	}
	return count, nil
}

// generateToken creates a cryptographically random API token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

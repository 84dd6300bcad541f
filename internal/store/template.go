package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

// TemplateStore handles vendor storefront template persistence. One row
// per vendor; saves replace the working document wholesale and the last
// writer wins — there are no version tokens or merge semantics.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `vendor_id, name, document, published, published_url, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*models.VendorTemplate, error) {
	t := &models.VendorTemplate{}
	var published []byte
	err := row.Scan(
		&t.VendorID, &t.Name, (*[]byte)(&t.Document), &published,
		&t.PublishedURL, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(published) > 0 {
		t.Published = json.RawMessage(published)
	}
	return t, nil
}

// Find retrieves a vendor's template record. Returns nil if the vendor
// has never saved one.
func (s *TemplateStore) Find(vendorID uuid.UUID) (*models.VendorTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		SELECT `+templateColumns+` FROM vendor_templates WHERE vendor_id = $1
	`, vendorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

// Save upserts the working document for a vendor, replacing any prior
// document in full.
func (s *TemplateStore) Save(vendorID uuid.UUID, name string, doc json.RawMessage) (*models.VendorTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		INSERT INTO vendor_templates (vendor_id, name, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (vendor_id) DO UPDATE SET
			name = EXCLUDED.name,
			document = EXCLUDED.document,
			updated_at = NOW()
		RETURNING `+templateColumns+`
	`, vendorID, name, []byte(doc)))
	if err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return t, nil
}

// Publish promotes the working document to the published snapshot and
// records the deployed storefront URL.
func (s *TemplateStore) Publish(vendorID uuid.UUID, url string) (*models.VendorTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		UPDATE vendor_templates SET
			published = document,
			published_url = NULLIF($1, ''),
			updated_at = NOW()
		WHERE vendor_id = $2
		RETURNING `+templateColumns+`
	`, url, vendorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("publish template: %w", err)
	}
	return t, nil
}

// Delete removes a vendor's template record.
func (s *TemplateStore) Delete(vendorID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM vendor_templates WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Count returns the number of saved templates.
func (s *TemplateStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM vendor_templates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

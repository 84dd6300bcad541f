package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"vendorpress/internal/document"
)

// Seed populates the database with initial development data: one
// approved demo vendor with a default storefront template and a couple
// of catalog rows, so the editor and preview have something to show.
// No-op if any vendor already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM vendors").Scan(&count); err != nil {
		return fmt.Errorf("seed check vendors: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	var vendorID string
	err := db.QueryRow(`
		INSERT INTO vendors (name, slug, email, status, api_token)
		VALUES ('Demo Outfitters', 'demo-outfitters', 'demo@vendorpress.local', 'approved', 'dev-vendor-token')
		RETURNING id
	`).Scan(&vendorID)
	if err != nil {
		return fmt.Errorf("seed insert vendor: %w", err)
	}

	doc, err := json.Marshal(document.Default())
	if err != nil {
		return fmt.Errorf("seed marshal document: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO vendor_templates (vendor_id, name, document)
		VALUES ($1, 'My Storefront', $2)
	`, vendorID, doc)
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	var categoryID string
	err = db.QueryRow(`
		INSERT INTO categories (name, slug) VALUES ('Outdoor', 'outdoor') RETURNING id
	`).Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO products (vendor_id, category_id, name, slug, price_cents, stock)
		VALUES
			($1, $2, 'Trail Backpack', 'trail-backpack', 8900, 24),
			($1, $2, 'Camp Stove', 'camp-stove', 4500, 3)
	`, vendorID, categoryID)
	if err != nil {
		return fmt.Errorf("seed insert products: %w", err)
	}

	slog.Info("database seeded with demo vendor",
		"vendor", "demo-outfitters",
		"api_token", "dev-vendor-token",
	)
	return nil
}

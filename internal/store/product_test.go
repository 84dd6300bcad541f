package store

import (
	"testing"

	"vendorpress/internal/models"
)

func TestProductListPagination(t *testing.T) {
	db := testDB(t)
	vendor := testVendor(t, db, "paging")
	s := NewProductStore(db)

	for _, name := range []string{"Trail Mix", "Water Bottle"} {
		p, err := s.Create(&models.Product{
			VendorID:   vendor.ID,
			Name:       name,
			Slug:       "test-" + name,
			PriceCents: 799,
			Stock:      10,
			LowStockAt: 5,
			IsActive:   true,
		})
		if err != nil {
			t.Fatalf("create product: %v", err)
		}
		t.Cleanup(func() {
			db.Exec(`DELETE FROM products WHERE id = $1`, p.ID)
		})
	}

	list, err := s.List(models.ProductFilter{VendorID: &vendor.ID, Offset: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("offset 1: got %d products, want 1", len(list))
	}

	// A bad query parameter can arrive as a negative offset; it must
	// page from the start, not error out in Postgres.
	list, err = s.List(models.ProductFilter{VendorID: &vendor.ID, Offset: -5})
	if err != nil {
		t.Fatalf("list with negative offset: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("negative offset: got %d products, want 2", len(list))
	}
}

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vendorpress/internal/models"
)

// NotificationStore handles dashboard notification persistence.
type NotificationStore struct {
	db *sql.DB
}

// NewNotificationStore creates a new NotificationStore with the given database connection.
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Add records a notification. vendorID may be nil for platform events.
func (s *NotificationStore) Add(vendorID *uuid.UUID, kind models.NotificationKind, message string) error {
	_, err := s.db.Exec(`
		INSERT INTO notifications (vendor_id, kind, message) VALUES ($1, $2, $3)
	`, vendorID, kind, message)
	if err != nil {
		return fmt.Errorf("add notification: %w", err)
	}
	return nil
}

// ListRecent returns the newest notifications, up to limit.
func (s *NotificationStore) ListRecent(limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, vendor_id, kind, message, read, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.VendorID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read.
func (s *NotificationStore) MarkRead(id uuid.UUID) error {
	result, err := s.db.Exec(`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// CountUnread returns the number of unread notifications.
func (s *NotificationStore) CountUnread() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE NOT read`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

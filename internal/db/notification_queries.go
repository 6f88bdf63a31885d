package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

// SaveNotification inserts or replaces an inbox notification.
func (db *DB) SaveNotification(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	query := `
		INSERT OR REPLACE INTO notifications (id, type, title, message, timestamp, is_read, link)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(context.Background(), query,
		n.ID,
		string(n.Type),
		n.Title,
		n.Message,
		formatTime(n.Timestamp),
		n.IsRead,
		nullString(string(n.Link)),
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// GetNotifications returns the inbox newest first. A non-positive limit returns all.
func (db *DB) GetNotifications(limit int) ([]models.Notification, error) {
	query := `
		SELECT id, type, title, message, timestamp, is_read, link
		FROM notifications
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer closeRows(rows)

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var typ, ts string
		var link sql.NullString
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Message, &ts, &n.IsRead, &link); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.AlertType(typ)
		n.Timestamp = parseTime(ts)
		n.Link = models.View(link.String)
		out = append(out, n)
	}

	return out, rows.Err()
}

// CountUnreadNotifications returns how many inbox entries are unread.
func (db *DB) CountUnreadNotifications() (int, error) {
	var n int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM notifications WHERE is_read = 0").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkNotificationRead marks one notification as read.
func (db *DB) MarkNotificationRead(id string) error {
	result, err := db.ExecContext(context.Background(), "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectRow(result, "notification", id)
}

// MarkAllNotificationsRead marks the whole inbox as read and returns how many changed.
func (db *DB) MarkAllNotificationsRead() (int64, error) {
	result, err := db.ExecContext(context.Background(), "UPDATE notifications SET is_read = 1 WHERE is_read = 0")
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// IssueCertificate records a certificate for a participant of a cohort.
// It reports false when the certificate had already been issued.
func (db *DB) IssueCertificate(cohortID, participantID, issuedBy string, at time.Time) (bool, error) {
	result, err := db.ExecContext(context.Background(), `
		INSERT OR IGNORE INTO certificates (cohort_id, participant_id, issued_at, issued_by)
		VALUES (?, ?, ?, ?)
	`, cohortID, participantID, formatTime(at), issuedBy)
	if err != nil {
		return false, fmt.Errorf("failed to issue certificate: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// GetIssuedCertificates returns the participants of a cohort holding a certificate.
func (db *DB) GetIssuedCertificates(cohortID string) (map[string]time.Time, error) {
	rows, err := db.QueryContext(context.Background(),
		"SELECT participant_id, issued_at FROM certificates WHERE cohort_id = ?", cohortID)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer closeRows(rows)

	issued := make(map[string]time.Time)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		issued[id] = parseTime(at)
	}
	return issued, rows.Err()
}

// GetCertificateIssuer returns who issued a participant's certificate.
func (db *DB) GetCertificateIssuer(cohortID, participantID string) (string, error) {
	var by string
	err := db.QueryRowContext(context.Background(),
		"SELECT issued_by FROM certificates WHERE cohort_id = ? AND participant_id = ?",
		cohortID, participantID,
	).Scan(&by)
	if isNoRows(err) {
		return "", fmt.Errorf("certificate %s/%s: %w", cohortID, participantID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get certificate: %w", err)
	}
	return by, nil
}

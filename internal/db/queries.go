package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

// timeLayout sorts lexically in the same order as the instants it encodes.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		logger.Warn("unparseable timestamp in store", "value", s, "error", err)
		return time.Time{}
	}
	return t
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("failed to close rows", "error", err)
	}
}

// InsertAuditEntry appends an entry to the audit trail, assigning an ID and
// timestamp when they are missing.
func (db *DB) InsertAuditEntry(entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Status == "" {
		entry.Status = models.AuditSuccess
	}

	query := `
		INSERT INTO audit_log (id, timestamp, actor_name, action, details, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(context.Background(), query,
		entry.ID,
		formatTime(entry.Timestamp),
		entry.ActorName,
		string(entry.Action),
		entry.Details,
		string(entry.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// GetAuditLog returns audit entries newest first. A non-positive limit returns all.
func (db *DB) GetAuditLog(limit int) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, timestamp, actor_name, action, details, status
		FROM audit_log
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer closeRows(rows)

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		var ts, action, status string
		if err := rows.Scan(&e.ID, &ts, &e.ActorName, &action, &e.Details, &status); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Timestamp = parseTime(ts)
		e.Action = models.AuditAction(action)
		e.Status = models.AuditStatus(status)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountAuditEntries returns the number of audit entries recorded for action,
// or all entries when action is empty.
func (db *DB) CountAuditEntries(action models.AuditAction) (int, error) {
	query := "SELECT COUNT(*) FROM audit_log WHERE ? = '' OR action = ?"
	var n int
	if err := db.QueryRowContext(context.Background(), query, string(action), string(action)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return n, nil
}

// InsertResource stores a resource. Later inserts list first.
func (db *DB) InsertResource(r *models.Resource) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode resource tags: %w", err)
	}

	var week sql.NullInt64
	if r.AssignedWeek != nil {
		week = sql.NullInt64{Int64: int64(*r.AssignedWeek), Valid: true}
	}

	query := `
		INSERT INTO resources (id, title, description, type, url, assigned_week, tags, upload_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(context.Background(), query,
		r.ID,
		r.Title,
		r.Description,
		string(r.Type),
		r.URL,
		week,
		string(tags),
		r.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert resource: %w", err)
	}
	return nil
}

// GetResources returns the library, most recently added first.
func (db *DB) GetResources() ([]models.Resource, error) {
	query := `
		SELECT id, title, description, type, url, assigned_week, tags, upload_date
		FROM resources
		ORDER BY seq DESC
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer closeRows(rows)

	var resources []models.Resource
	for rows.Next() {
		var r models.Resource
		var typ, tags string
		var week sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &typ, &r.URL, &week, &tags, &r.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		r.Type = models.ResourceType(typ)
		if week.Valid {
			r.AssignedWeek = models.WeekPtr(int(week.Int64))
		}
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of resource %s: %w", r.ID, err)
		}
		resources = append(resources, r)
	}

	return resources, rows.Err()
}

// DeleteResource removes a resource, returning ErrNotFound for unknown IDs.
func (db *DB) DeleteResource(id string) error {
	result, err := db.ExecContext(context.Background(), "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return expectRow(result, "resource", id)
}

func expectRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

// IsEmpty reports whether table has no rows. It is used to seed fixtures once.
func (db *DB) IsEmpty(table string) (bool, error) {
	switch table {
	case "audit_log", "resources", "reminders", "outbox", "notifications", "certificates":
	default:
		return false, fmt.Errorf("unknown table %q", table)
	}

	var exists int
	err := db.QueryRowContext(context.Background(), "SELECT EXISTS (SELECT 1 FROM "+table+")").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	return exists == 0, nil
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

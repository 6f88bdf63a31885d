package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

const reminderColumns = `id, date, template, channel, body, recipient_ids, recipient_count, delivery_rate, status`

// InsertReminder stores a reminder batch.
func (db *DB) InsertReminder(r *models.ReminderLog) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Channel == "" {
		r.Channel = models.ChannelWhatsApp
	}

	ids, err := json.Marshal(r.RecipientIDs)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}

	query := `INSERT INTO reminders (` + reminderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.ExecContext(context.Background(), query,
		r.ID,
		formatTime(r.Date),
		r.Template,
		string(r.Channel),
		r.Body,
		string(ids),
		r.RecipientCount,
		r.DeliveryRate,
		string(r.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// UpdateReminderDelivery records the outcome of delivering a reminder.
func (db *DB) UpdateReminderDelivery(id string, status models.ReminderStatus, deliveryRate int) error {
	result, err := db.ExecContext(context.Background(),
		"UPDATE reminders SET status = ?, delivery_rate = ? WHERE id = ?",
		string(status), deliveryRate, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return expectRow(result, "reminder", id)
}

// GetReminder returns a single reminder by ID.
func (db *DB) GetReminder(id string) (*models.ReminderLog, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`
	rows, err := db.QueryContext(context.Background(), query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder: %w", err)
	}
	defer closeRows(rows)

	reminders, err := scanReminders(rows)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, fmt.Errorf("reminder %q: %w", id, ErrNotFound)
	}
	return &reminders[0], nil
}

// GetReminders returns the reminder history, newest first.
func (db *DB) GetReminders() ([]models.ReminderLog, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders ORDER BY date DESC, rowid DESC`
	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer closeRows(rows)

	return scanReminders(rows)
}

// GetDueReminders returns scheduled reminders whose time has come, oldest first.
func (db *DB) GetDueReminders(now time.Time) ([]models.ReminderLog, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE status = ? AND date <= ?
		ORDER BY date ASC, rowid ASC`
	rows, err := db.QueryContext(context.Background(), query, string(models.ReminderScheduled), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer closeRows(rows)

	return scanReminders(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReminders(rows rowScanner) ([]models.ReminderLog, error) {
	var reminders []models.ReminderLog
	for rows.Next() {
		var r models.ReminderLog
		var date, channel, ids, status string
		err := rows.Scan(
			&r.ID,
			&date,
			&r.Template,
			&channel,
			&r.Body,
			&ids,
			&r.RecipientCount,
			&r.DeliveryRate,
			&status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.Date = parseTime(date)
		r.Channel = models.Channel(channel)
		r.Status = models.ReminderStatus(status)
		if err := json.Unmarshal([]byte(ids), &r.RecipientIDs); err != nil {
			return nil, fmt.Errorf("failed to decode recipients of reminder %s: %w", r.ID, err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// InsertOutboxMessages stores a batch of rendered messages in one transaction.
func (db *DB) InsertOutboxMessages(msgs []models.OutboxMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin outbox transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outbox (
			id, batch_id, channel, participant_id, address, subject, body,
			attachments, bcc, delivered, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare outbox insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for i := range msgs {
		m := &msgs[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		_, err := stmt.ExecContext(ctx,
			m.ID,
			m.BatchID,
			string(m.Channel),
			m.ParticipantID,
			m.Address,
			nullString(m.Subject),
			m.Body,
			m.Attachments,
			m.Bcc,
			m.Delivered,
			formatTime(m.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert outbox message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outbox batch: %w", err)
	}
	return nil
}

// GetOutbox returns messages of a batch in insertion order, or the most recent
// messages across batches when batchID is empty.
func (db *DB) GetOutbox(batchID string, limit int) ([]models.OutboxMessage, error) {
	query := `
		SELECT id, batch_id, channel, participant_id, address, subject, body,
			   attachments, bcc, delivered, created_at
		FROM outbox
		WHERE batch_id = ?
		ORDER BY seq ASC
		LIMIT ?
	`
	args := []any{batchID, sqlLimit(limit)}
	if batchID == "" {
		query = `
			SELECT id, batch_id, channel, participant_id, address, subject, body,
				   attachments, bcc, delivered, created_at
			FROM outbox
			ORDER BY seq DESC
			LIMIT ?
		`
		args = args[1:]
	}

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer closeRows(rows)

	var msgs []models.OutboxMessage
	for rows.Next() {
		var m models.OutboxMessage
		var channel, created string
		var subject nullableString
		err := rows.Scan(
			&m.ID,
			&m.BatchID,
			&channel,
			&m.ParticipantID,
			&m.Address,
			&subject,
			&m.Body,
			&m.Attachments,
			&m.Bcc,
			&m.Delivered,
			&created,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		m.Channel = models.Channel(channel)
		m.Subject = string(subject)
		m.CreatedAt = parseTime(created)
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// nullableString scans NULL as the empty string.
type nullableString string

func (s *nullableString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = nullableString(v)
	case []byte:
		*s = nullableString(v)
	default:
		return fmt.Errorf("unsupported type %T for string column", src)
	}
	return nil
}

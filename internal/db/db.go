// Package db manages the session store connection
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row addressed by ID does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
// The path ":memory:" keeps everything in a single in-memory connection.
func New(path string) (*DB, error) {
	memory := isMemory(path)

	if !memory {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every new connection to :memory: would see an empty database
	if memory {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// InMemory reports whether the store is discarded on close.
func (db *DB) InMemory() bool {
	return isMemory(db.path)
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	if !db.InMemory() {
		pragmas = append([]string{"PRAGMA journal_mode=WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	creators := []func() error{
		db.createAuditLogTable,
		db.createResourcesTable,
		db.createRemindersTable,
		db.createOutboxTable,
		db.createNotificationsTable,
		db.createCertificatesTable,
	}
	for _, create := range creators {
		if err := create(); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) createAuditLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		actor_name TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Success'
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createResourcesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS resources (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '#',
		assigned_week INTEGER,
		tags TEXT NOT NULL DEFAULT '[]',
		upload_date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resources_week ON resources(assigned_week);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createRemindersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		template TEXT NOT NULL,
		channel TEXT NOT NULL DEFAULT 'WhatsApp',
		body TEXT NOT NULL DEFAULT '',
		recipient_ids TEXT NOT NULL DEFAULT '[]',
		recipient_count INTEGER NOT NULL DEFAULT 0,
		delivery_rate INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_status_date ON reminders(status, date);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createOutboxTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS outbox (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		batch_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		subject TEXT,
		body TEXT NOT NULL DEFAULT '',
		attachments INTEGER NOT NULL DEFAULT 0,
		bcc INTEGER NOT NULL DEFAULT 0,
		delivered INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outbox_batch ON outbox(batch_id);
	CREATE INDEX IF NOT EXISTS idx_outbox_participant ON outbox(participant_id);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createNotificationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		link TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_timestamp ON notifications(timestamp);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createCertificatesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS certificates (
		cohort_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		issued_at TEXT NOT NULL,
		issued_by TEXT NOT NULL,
		PRIMARY KEY (cohort_id, participant_id)
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	if !db.InMemory() {
		// Checkpoint WAL before closing
		_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}

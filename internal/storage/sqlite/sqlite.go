package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/goodtune/awtally/internal/storage"
	_ "modernc.org/sqlite"
)

// Store implements the storage.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite-backed store. The schema is not created until
// EnsureSchema is called on the event store.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := storage.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("%w: create database directory: %v", storage.ErrUnavailable, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", storage.ErrUnavailable, err)
	}

	// SQLite limitation
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", storage.ErrUnavailable, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Events returns the event store.
func (s *Store) Events() storage.EventStore { return &eventStore{db: s.db} }

// runMigrations applies all pending migrations in version order.
func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version INTEGER NOT NULL UNIQUE,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for i, migration := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", version, err)
		}

		if _, err := tx.ExecContext(ctx, migration); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", version, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version, err)
		}
	}

	return nil
}

// migrations are applied in slice order; version = index + 1.
var migrations = []string{
	migration001Events,
	migration002EventIndexes,
}

const migration001Events = `
CREATE TABLE IF NOT EXISTS events (
	timestamp TEXT,
	duration REAL,
	app TEXT,
	title TEXT,
	platform TEXT,
	PRIMARY KEY (timestamp, app, title)
);
`

const migration002EventIndexes = `
CREATE INDEX IF NOT EXISTS idx_events_app ON events(app, timestamp);
`

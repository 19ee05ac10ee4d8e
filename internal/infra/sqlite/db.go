// Package sqlite mirrors the live task batch into an in-memory SQLite
// database so filtered queries and aggregates can be answered in SQL.
// Nothing is written to disk; the database dies with the process.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/gantry-dev/gantry/internal/domain"
)

const memoryDSN = ":memory:"

// DB wraps an in-memory SQLite connection and its migrations.
type DB struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

var _ domain.TaskStore = (*DB)(nil)

// Open creates a fresh in-memory database with the gantt schema applied.
func Open() (*DB, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Every connection to :memory: is its own database, so pin exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close releases the connection. The data is gone afterwards.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return domain.ErrStoreClosed
	}
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS gantt_tasks (
			id       INTEGER PRIMARY KEY,
			user     TEXT NOT NULL,
			task     TEXT NOT NULL,
			status   TEXT NOT NULL,
			start_ms INTEGER NOT NULL,
			end_ms   INTEGER NOT NULL,
			progress INTEGER NOT NULL CHECK (progress BETWEEN 0 AND 100),
			CHECK (end_ms > start_ms)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gantt_user ON gantt_tasks(user)`,
		`CREATE INDEX IF NOT EXISTS idx_gantt_status ON gantt_tasks(status)`,

		// Batch metadata (batch_id, seq, generated_at)
		`CREATE TABLE IF NOT EXISTS store_info (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// SetInfo stores a metadata key-value pair.
func (d *DB) SetInfo(key, value string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return domain.ErrStoreClosed
	}
	_, err := d.db.Exec(
		`INSERT INTO store_info (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Info retrieves a metadata value. Missing keys return "".
func (d *DB) Info(key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return "", domain.ErrStoreClosed
	}
	return d.infoLocked(key)
}

func (d *DB) infoLocked(key string) (string, error) {
	return infoFrom(d.db, key)
}

func infoFrom(q querier, key string) (string, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM store_info WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

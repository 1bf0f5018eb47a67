// Package sqlite provides a SQLite-backed implementation of the kv.Driver
// contract.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/kv"
)

// Driver implements kv.Driver on a single SQLite table.
type Driver struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite driver.
type Config struct {
	// Path is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	Path string
}

// NewDriver opens (creating if needed) the SQLite database at the configured
// path and bootstraps the kv table.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", c.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// All access funnels through one connection; writes are serialized and
	// ":memory:" databases keep their contents across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	logger.Debug("sqlite kv driver initialized",
		zap.String("path", c.Path),
	)

	return &Driver{db: db, logger: logger}, nil
}

// Get returns the value stored under key, or kv.ErrNotFound when absent.
func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, key,
	).Scan(&value)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %s", kv.ErrNotFound, key)
	case err != nil:
		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}

	return value, nil
}

// Set stores value under key, replacing any existing value.
func (d *Driver) Set(ctx context.Context, key string, value []byte) error {
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO kv(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key.
func (d *Driver) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key = ?`, key,
	); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ kv.Driver = (*Driver)(nil)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/manoj-chat/internal"
	_ "modernc.org/sqlite"
)

const createKVTable = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// SQLiteBackend stores values in the kv table of a sqlite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenDatabase opens (creating if needed) a read-write SQLite database
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: writes are serialized and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// OpenSQLiteBackend opens the database at path and ensures the kv table exists.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &internal.StorageError{Backend: string(DriverSQLite), Key: path, Op: "open", Err: err}
	}
	backend, err := NewSQLiteBackend(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return backend, nil
}

// NewSQLiteBackend wraps an open database, creating the kv table if missing.
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if _, err := db.Exec(createKVTable); err != nil {
		return nil, &internal.StorageError{Backend: string(DriverSQLite), Key: "kv", Op: "open", Err: err}
	}
	return &SQLiteBackend{db: db}, nil
}

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &internal.StorageError{Backend: string(DriverSQLite), Key: key, Op: "get", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Set implements Backend.
func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := b.db.ExecContext(ctx, query, key, value); err != nil {
		return &internal.StorageError{Backend: string(DriverSQLite), Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Backend.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return &internal.StorageError{Backend: string(DriverSQLite), Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// KVTableSQL is the schema of the sqlite message store.
const KVTableSQL = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// CreateInMemoryDB creates an in-memory SQLite database with the kv table.
// The pool is pinned to one connection so every query sees the same database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(KVTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create kv table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateTestDB creates an in-memory database holding a stored conversation
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	InsertValue(t, db, "chat_messages", StoredMessagesJSON)
	return db
}

// InsertValue inserts a raw value into the kv table
func InsertValue(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO kv (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert value: %v", err)
	}
}

// ReadValue reads a raw value from the kv table, failing the test if absent
func ReadValue(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	var value string
	if err := db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value); err != nil {
		t.Fatalf("Failed to read value %s: %v", key, err)
	}
	return value
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/staffdir/internal/shared"
)

// KeyValueStore is the storage surface [DataPersistence] is written against.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error) // Get returns the value for key, ok=false when absent
	Set(key, value string) error                       // Set creates or replaces key
	Remove(key string) error                           // Remove deletes key; absent keys are not an error
	Entries() (map[string]string, error)               // Entries returns every stored key and value
}

var _ KeyValueStore = (*SQLiteStore)(nil)

// SQLiteStore implements [KeyValueStore] over the kv_store table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new [SQLiteStore] with the given database connection.
//
// The schema must already exist; see [shared.RunMigrations].
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the value stored under key.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set upserts key.
func (s *SQLiteStore) Set(key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Remove deletes key if present.
func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Entries returns all keys and values.
func (s *SQLiteStore) Entries() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM kv_store")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query entries: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan entry: %v", shared.ErrStorage, err)
		}
		entries[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStorage, err)
	}

	return entries, nil
}

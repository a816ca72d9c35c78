package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);
`

// SQLiteStore persists the key-value map in an embedded SQLite file. It is
// the durable analogue of the browser's local storage: one file per profile,
// whole JSON values under string keys.
type SQLiteStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

// OpenSQLite opens (and if needed creates) the store file at path.
func OpenSQLite(path string, log logger.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}

	// A single writer keeps the no-locking contract honest.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: log}, nil
}

// Get returns the value for key. Read faults are logged and read as absence.
func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	err := s.db.Get(&value, `SELECT v FROM kv WHERE k = ?`, key)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("Store read failed", "key", key, "error", err)
		}
		return "", false
	}

	return value, true
}

// Set writes the value for key.
func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value,
	)

	if err != nil {
		return fmt.Errorf("store write failed for %q: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE k = ?`, key); err != nil {
		return fmt.Errorf("store delete failed for %q: %w", key, err)
	}

	return nil
}

// Clear wipes the whole store.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("store clear failed: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package storage provides the client's local persistence: a small
// SQLite-backed key/value table. Writes that span several keys happen in
// one transaction, so a session is either fully persisted or not at all.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// KVStore is a key/value store over a single SQLite table.
type KVStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the key/value database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*KVStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	s, err := NewKVStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewKVStore wraps an existing database handle.
func NewKVStore(db *sql.DB) (*KVStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Close closes the underlying database.
func (s *KVStore) Close() error { return s.db.Close() }

// Get returns the value for key and whether it was present.
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

// SetMany upserts all pairs in a single transaction. Either every key is
// written or none is.
func (s *KVStore) SetMany(pairs map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	for key, value := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			s.logErr("rollback", tx.Rollback())
			return fmt.Errorf("kv set %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// DeleteMany removes the given keys in one transaction. Missing keys are
// not an error, so callers can delete idempotently.
func (s *KVStore) DeleteMany(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	for _, key := range keys {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			s.logErr("rollback", tx.Rollback())
			return fmt.Errorf("kv delete %q: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *KVStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("kv store: %s: %v", prefix, err)
	}
}

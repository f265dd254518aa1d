// Package cache provides a SQLite-backed store for provider lookup
// results, keyed by (source, title, artist). Entries are opaque
// serialized mappings; callers own the encoding. Negative results are
// stored too, so a known miss never triggers a repeat network call.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS lookups (
	source     TEXT NOT NULL,
	title      TEXT NOT NULL,
	artist     TEXT NOT NULL,
	result     TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	PRIMARY KEY (source, title, artist)
);
`

// emptyResult marks a recorded miss.
var emptyResult = json.RawMessage("{}")

// Store wraps a sql.DB with lookup-cache operations.
// All operations are single-statement transactions, safe for
// concurrent use from multiple workers.
type Store struct {
	conn *sql.DB

	// MaxAge bounds how long an entry is served. Zero means entries
	// never expire; anything older than MaxAge is reported as absent
	// so the caller re-queries and overwrites it.
	MaxAge time.Duration
}

// Open opens (or creates) the cache database and applies the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the serialized result for a key. The second return value
// distinguishes "never queried" (false) from a cached result, which
// may itself be the empty mapping for a previously recorded miss.
func (s *Store) Get(source, title, artist string) (json.RawMessage, bool, error) {
	var raw string
	var createdAt time.Time
	err := s.conn.QueryRow(
		`SELECT result, created_at FROM lookups WHERE source = ? AND title = ? AND artist = ?`,
		source, title, artist,
	).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s/%s/%s: %w", source, title, artist, err)
	}

	if s.MaxAge > 0 && time.Since(createdAt) > s.MaxAge {
		return nil, false, nil
	}

	return json.RawMessage(raw), true, nil
}

// Put upserts the serialized result for a key, stamping it with the
// current time. A nil or empty result is stored as the empty mapping,
// deliberately: it records a provider miss.
func (s *Store) Put(source, title, artist string, result json.RawMessage) error {
	if len(result) == 0 {
		result = emptyResult
	}
	_, err := s.conn.Exec(
		`INSERT INTO lookups (source, title, artist, result, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source, title, artist) DO UPDATE SET result = excluded.result, created_at = excluded.created_at`,
		source, title, artist, string(result), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %s/%s/%s: %w", source, title, artist, err)
	}
	return nil
}

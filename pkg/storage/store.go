// Package storage provides the durable append-only sighting log over
// SQLite and the deduplicated latest-per-name read used by the live view.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InMemory selects a non-persistent backing store.
const InMemory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS log_entry (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	ip        TEXT NOT NULL,
	name      TEXT NOT NULL
);`

// latestPerNameQuery keeps, for each distinct name, the row with the
// greatest surrogate id. Insertion order wins over the untrusted capture
// timestamp. Cost grows with total log size: there is no compaction.
const latestPerNameQuery = `
SELECT id, timestamp, ip, name FROM (
	SELECT id, timestamp, ip, name,
	       ROW_NUMBER() OVER (PARTITION BY name ORDER BY id DESC) AS rn
	FROM log_entry
)
WHERE rn = 1
ORDER BY timestamp DESC, id DESC;`

// LogEntry is one durable sighting record. Entries are never updated or
// deleted; id is strictly increasing in append order.
type LogEntry struct {
	ID        int64
	Timestamp int64
	IP        string
	Name      string
}

// Store is the sighting log handle shared by the persistence writer and
// the live view renderer. Access is serialized through a single
// connection so readers never observe a partially written row.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sighting log at path. Pass InMemory for a
// non-persistent store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sighting log at %s: %w", path, err)
	}

	// A single connection keeps an in-memory database shared between the
	// writer and the renderer, and serializes file access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sighting log schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append inserts one log entry. It is called from exactly one writer
// goroutine; a failed insert is fatal to that writer.
func (s *Store) Append(ctx context.Context, timestamp int64, ip, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO log_entry (timestamp, ip, name) VALUES (?, ?, ?)`,
		timestamp, ip, name)
	return err
}

// LatestPerName returns one row per distinct name, each the most recently
// appended entry for that name, ordered by timestamp descending.
func (s *Store) LatestPerName(ctx context.Context) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, latestPerNameQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.IP, &e.Name); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count reports the total number of appended entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_entry`).Scan(&n)
	return n, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

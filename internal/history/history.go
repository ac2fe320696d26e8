// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history indexes change records in SQLite for later querying.
//
// The markdown change log stays the durable source of truth; this index
// exists so `watchlog history` can filter by path, kind, and time without
// parsing markdown.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/watchlog-tui/internal/changelog"
	"github.com/jeranaias/watchlog-tui/internal/diff"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	session  TEXT NOT NULL,
	root     TEXT NOT NULL,
	ts       INTEGER NOT NULL,
	kind     TEXT NOT NULL,
	path     TEXT NOT NULL,
	added    INTEGER NOT NULL DEFAULT 0,
	removed  INTEGER NOT NULL DEFAULT 0,
	diff     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_records_path_ts ON records(path, ts);
CREATE INDEX IF NOT EXISTS idx_records_ts ON records(ts);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed change record index.
type Store struct {
	db *sql.DB
}

// Row is one stored change record.
type Row struct {
	ID      int64     `json:"id"`
	Session string    `json:"session"`
	Root    string    `json:"root"`
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Path    string    `json:"path"`
	Added   int       `json:"added"`
	Removed int       `json:"removed"`
	Diff    string    `json:"diff,omitempty"`
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// Single writer, WAL for concurrent readers
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Record stores one change record under the given session and root.
func (s *Store) Record(session, root string, rec changelog.ChangeRecord) error {
	var diffText string
	if rec.Diff != nil && rec.Diff.HasChanges() {
		diffText = diff.FormatUnified(rec.RelPath, rec.Diff)
	}

	_, err := s.db.Exec(`
		INSERT INTO records (session, root, ts, kind, path, added, removed, diff)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session, root, rec.Time.Unix(), string(rec.Kind), rec.RelPath,
		rec.Added, rec.Removed, diffText)
	if err != nil {
		return fmt.Errorf("failed to record change: %w", err)
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// QueryOptions filters a history query. Zero values mean "no filter".
type QueryOptions struct {
	Path  string    // Substring match on the relative path
	Kind  string    // Exact kind: CREATED, MODIFIED, DELETED
	Since time.Time // Only records at or after this time
	Limit int       // Maximum rows (default 100)
}

// Query returns matching records, newest first.
func (s *Store) Query(opts QueryOptions) ([]Row, error) {
	var conds []string
	var args []any

	if opts.Path != "" {
		conds = append(conds, "path LIKE ?")
		args = append(args, "%"+opts.Path+"%")
	}
	if opts.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, strings.ToUpper(opts.Kind))
	}
	if !opts.Since.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, opts.Since.Unix())
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT id, session, root, ts, kind, path, added, removed, diff FROM records"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var r Row
		var ts int64
		if err := rows.Scan(&r.ID, &r.Session, &r.Root, &ts, &r.Kind,
			&r.Path, &r.Added, &r.Removed, &r.Diff); err != nil {
			return nil, fmt.Errorf("history scan failed: %w", err)
		}
		r.Time = time.Unix(ts, 0)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Count returns the total number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n)
	return n, err
}

// Package store is the SQLite persistence layer for anchors.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for persisted anchors.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the anchors table and its indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS anchors (
  id             INTEGER PRIMARY KEY,
  file_path      TEXT NOT NULL,
  tag            TEXT,
  path           TEXT NOT NULL,
  kind           TEXT NOT NULL,
  start_line     INTEGER,
  start_col      INTEGER,
  end_line       INTEGER,
  end_col        INTEGER,
  stale          BOOLEAN NOT NULL DEFAULT FALSE,
  created_at     TIMESTAMP,
  last_resolved  TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_anchors_file ON anchors(file_path);
`

// Anchor is a persisted structural anchor: the encoded path plus the span it
// resolved to last time. Line and column numbers are 0-based. A stale anchor
// is one whose path failed to resolve against the file's current content; it
// is kept so callers can decide whether to drop or re-seat it.
type Anchor struct {
	ID           int64
	FilePath     string
	Tag          string
	Path         string
	Kind         string
	StartLine    int
	StartCol     int
	EndLine      int
	EndCol       int
	Stale        bool
	CreatedAt    time.Time
	LastResolved time.Time
}

// InsertAnchor inserts a and returns its assigned ID.
func (s *Store) InsertAnchor(a *Anchor) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO anchors
		   (file_path, tag, path, kind, start_line, start_col, end_line, end_col, stale, created_at, last_resolved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.FilePath, a.Tag, a.Path, a.Kind,
		a.StartLine, a.StartCol, a.EndLine, a.EndCol,
		a.Stale, a.CreatedAt, a.LastResolved,
	)
	if err != nil {
		return 0, fmt.Errorf("insert anchor: %w", err)
	}
	return res.LastInsertId()
}

const anchorColumns = `id, file_path, tag, path, kind,
  start_line, start_col, end_line, end_col, stale, created_at, last_resolved`

func scanAnchor(row interface{ Scan(...any) error }) (*Anchor, error) {
	var a Anchor
	err := row.Scan(
		&a.ID, &a.FilePath, &a.Tag, &a.Path, &a.Kind,
		&a.StartLine, &a.StartCol, &a.EndLine, &a.EndCol,
		&a.Stale, &a.CreatedAt, &a.LastResolved,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AnchorByID returns the anchor with the given ID, or nil if none exists.
func (s *Store) AnchorByID(id int64) (*Anchor, error) {
	row := s.db.QueryRow(`SELECT `+anchorColumns+` FROM anchors WHERE id = ?`, id)
	a, err := scanAnchor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("anchor by id: %w", err)
	}
	return a, nil
}

// AnchorsByFile returns all anchors for a file, in insertion order.
func (s *Store) AnchorsByFile(filePath string) ([]Anchor, error) {
	rows, err := s.db.Query(
		`SELECT `+anchorColumns+` FROM anchors WHERE file_path = ? ORDER BY id`, filePath)
	if err != nil {
		return nil, fmt.Errorf("anchors by file: %w", err)
	}
	defer rows.Close()
	return collectAnchors(rows)
}

// AllAnchors returns every stored anchor, ordered by file then insertion.
func (s *Store) AllAnchors() ([]Anchor, error) {
	rows, err := s.db.Query(`SELECT ` + anchorColumns + ` FROM anchors ORDER BY file_path, id`)
	if err != nil {
		return nil, fmt.Errorf("all anchors: %w", err)
	}
	defer rows.Close()
	return collectAnchors(rows)
}

func collectAnchors(rows *sql.Rows) ([]Anchor, error) {
	var anchors []Anchor
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		anchors = append(anchors, *a)
	}
	return anchors, rows.Err()
}

// UpdateAnchorSpan records a successful resolution: the anchor's span is
// replaced and its stale flag cleared.
func (s *Store) UpdateAnchorSpan(id int64, startLine, startCol, endLine, endCol int, resolvedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE anchors
		 SET start_line = ?, start_col = ?, end_line = ?, end_col = ?, stale = FALSE, last_resolved = ?
		 WHERE id = ?`,
		startLine, startCol, endLine, endCol, resolvedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update anchor span: %w", err)
	}
	return nil
}

// MarkStale flags an anchor whose path no longer resolves.
func (s *Store) MarkStale(id int64) error {
	if _, err := s.db.Exec(`UPDATE anchors SET stale = TRUE WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}
	return nil
}

// DeleteAnchor removes one anchor.
func (s *Store) DeleteAnchor(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM anchors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete anchor: %w", err)
	}
	return nil
}

// DeleteFileAnchors removes all anchors for a file and returns how many were
// deleted.
func (s *Store) DeleteFileAnchors(filePath string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM anchors WHERE file_path = ?`, filePath)
	if err != nil {
		return 0, fmt.Errorf("delete file anchors: %w", err)
	}
	return res.RowsAffected()
}

// Package store persists visited flags and user preferences in a SQLite
// database. The mobile-style usage is strictly single-writer, so the schema
// carries no versioning or migration machinery.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parker-boom/polycanyon"
)

// Store implements polycanyon.VisitStore and polycanyon.PrefStore on SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Interface checks.
var (
	_ polycanyon.VisitStore = (*Store)(nil)
	_ polycanyon.PrefStore  = (*Store)(nil)
)

// Open initializes the SQLite database at the given path, creating the file
// and its parent directory if needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	visitsTable := `
	CREATE TABLE IF NOT EXISTS visits (
		structure INTEGER PRIMARY KEY,
		session TEXT NOT NULL,
		visited_at DATETIME NOT NULL
	);`

	prefsTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	for _, table := range []string{visitsTable, prefsTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// MarkVisited records a visit. INSERT OR IGNORE keeps the operation
// idempotent at the storage layer: an existing row is left untouched and the
// affected-rows count tells us whether the flag transitioned.
func (s *Store) MarkVisited(ctx context.Context, v polycanyon.Visit) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO visits (structure, session, visited_at) VALUES (?, ?, ?)`,
		v.Structure, v.Session, v.At.UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("marking structure %d visited: %w", v.Structure, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// IsVisited reports whether the structure is currently visited.
func (s *Store) IsVisited(ctx context.Context, structure int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM visits WHERE structure = ?`, structure).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying visit for structure %d: %w", structure, err)
	}
	return true, nil
}

// Visits returns all recorded visits ordered by structure number.
func (s *Store) Visits(ctx context.Context) ([]polycanyon.Visit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT structure, session, visited_at FROM visits ORDER BY structure`)
	if err != nil {
		return nil, fmt.Errorf("querying visits: %w", err)
	}
	defer rows.Close()

	var out []polycanyon.Visit
	for rows.Next() {
		var v polycanyon.Visit
		var at string
		if err := rows.Scan(&v.Structure, &v.Session, &at); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, at); perr == nil {
			v.At = t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Reset clears all visited flags, starting a new reset cycle.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visits`); err != nil {
		return fmt.Errorf("resetting visits: %w", err)
	}
	return nil
}

// SetPref stores a preference, replacing any previous value.
func (s *Store) SetPref(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("setting preference %q: %w", key, err)
	}
	return nil
}

// GetPref returns a preference value and whether it was present.
func (s *Store) GetPref(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting preference %q: %w", key, err)
	}
	return v, true, nil
}

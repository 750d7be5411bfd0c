// Package history provides the persisted query/response log
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cmdai-tools/cmdai/internal/types"
)

// Store manages the append-only history of query/response exchanges.
// It assumes a single process; concurrent external writers are not guarded
// against.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the database schema. seq is the insertion order and is
// what List sorts on.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		query TEXT NOT NULL,
		response TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exchanges_timestamp ON exchanges(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append adds an entry to the tail of the log. A write failure surfaces as
// *types.PersistenceError; callers treat it as a warning, not a failed
// query.
func (s *Store) Append(entry *types.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO exchanges (id, timestamp, query, response)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, entry.Query, entry.Response)
	if err != nil {
		return &types.PersistenceError{Op: "append history", Path: s.path, Err: err}
	}
	return nil
}

// List returns all entries in insertion order, oldest first. An empty
// store yields an empty slice.
func (s *Store) List() ([]*types.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, query, response
		FROM exchanges
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*types.HistoryEntry{}
	for rows.Next() {
		entry := &types.HistoryEntry{}
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Query, &entry.Response); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear empties the log. The delete is a single statement, so readers
// never observe a partially cleared store.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM exchanges"); err != nil {
		return &types.PersistenceError{Op: "clear history", Path: s.path, Err: err}
	}
	return nil
}

// Prune keeps only the newest keep entries and reports how many were
// removed. Ordering of the surviving suffix is unchanged.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(`
		DELETE FROM exchanges WHERE seq NOT IN (
			SELECT seq FROM exchanges ORDER BY seq DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, &types.PersistenceError{Op: "prune history", Path: s.path, Err: err}
	}
	removed, _ := res.RowsAffected()
	return int(removed), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

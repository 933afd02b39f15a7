// Package store is the relational persistence layer: folders, thinkers,
// notes, mentions, terms, aliases, occurrences, and synthesis runs, backed
// by SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Single connection: modernc/sqlite pragmas are per-connection, and the
	// rescan delete+insert pairs rely on transaction isolation.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS folders (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS thinkers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		folder_id TEXT REFERENCES folders(id) ON DELETE SET NULL,
		is_canvas_note INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);

	CREATE TABLE IF NOT EXISTS mentions (
		note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		thinker_id TEXT NOT NULL REFERENCES thinkers(id) ON DELETE CASCADE,
		PRIMARY KEY (note_id, thinker_id)
	);

	CREATE TABLE IF NOT EXISTS terms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS term_aliases (
		id TEXT PRIMARY KEY,
		term_id TEXT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'proposed',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_aliases_term ON term_aliases(term_id);

	CREATE TABLE IF NOT EXISTS occurrences (
		id TEXT PRIMARY KEY,
		term_id TEXT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
		note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		context_snippet TEXT NOT NULL,
		paragraph_index INTEGER NOT NULL,
		char_offset INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_occurrences_term ON occurrences(term_id);
	CREATE INDEX IF NOT EXISTS idx_occurrences_note ON occurrences(note_id);

	CREATE TABLE IF NOT EXISTS synthesis_runs (
		id TEXT PRIMARY KEY,
		term_id TEXT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
		mode TEXT NOT NULL,
		filter_context TEXT NOT NULL DEFAULT '',
		synthesis_text TEXT NOT NULL,
		coverage_rate REAL,
		generated INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_term_created ON synthesis_runs(term_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS synthesis_citations (
		run_id TEXT NOT NULL REFERENCES synthesis_runs(id) ON DELETE CASCADE,
		citation_key TEXT NOT NULL,
		note_id TEXT NOT NULL,
		note_title TEXT NOT NULL DEFAULT '',
		folder_name TEXT NOT NULL DEFAULT '',
		context_snippet TEXT NOT NULL,
		PRIMARY KEY (run_id, citation_key)
	);

	CREATE TABLE IF NOT EXISTS review_states (
		term_id TEXT PRIMARY KEY REFERENCES terms(id) ON DELETE CASCADE,
		repetitions INTEGER NOT NULL DEFAULT 0,
		ease_factor REAL NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 0,
		due_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

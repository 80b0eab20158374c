// Package journal records run and delivery outcomes in a local SQLite file
// for audit. It is write-only: nothing in the delivery path reads it back,
// and it performs no deduplication across runs.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Journal is an open audit database. A nil *Journal is valid and records
// nothing, so callers don't branch on whether journaling is enabled.
type Journal struct {
	db *sql.DB
}

// Open creates (if needed) and opens the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database. Safe on nil.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
	  run_id       TEXT PRIMARY KEY,
	  started_at   INTEGER NOT NULL,
	  older        TEXT NOT NULL,
	  newer        TEXT NOT NULL,
	  novel_count  INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS outcomes (
	  id           INTEGER PRIMARY KEY AUTOINCREMENT,
	  run_id       TEXT NOT NULL,
	  recipient    TEXT NOT NULL,
	  status       TEXT NOT NULL,
	  reason       TEXT,
	  draft_path   TEXT,
	  recorded_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return nil
}

// RecordRun stores one row describing the snapshot pair a run compared.
// Safe on nil.
func (j *Journal) RecordRun(runID, older, newer string, novelCount int, startedAt time.Time) error {
	if j == nil {
		return nil
	}
	_, err := j.db.Exec(
		`INSERT INTO runs (run_id, started_at, older, newer, novel_count) VALUES (?, ?, ?, ?, ?)`,
		runID, startedAt.Unix(), older, newer, novelCount,
	)
	return err
}

// RecordOutcome stores one delivery outcome. Safe on nil.
func (j *Journal) RecordOutcome(runID, recipient, status, reason, draftPath string, at time.Time) error {
	if j == nil {
		return nil
	}
	_, err := j.db.Exec(
		`INSERT INTO outcomes (run_id, recipient, status, reason, draft_path, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, recipient, status, reason, draftPath, at.Unix(),
	)
	return err
}

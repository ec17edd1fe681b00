// Package history persists a ledger of past analysis runs in SQLite.
//
// The ledger is append-only bookkeeping: the pipeline writes one row per run
// and never reads it back, so a broken history database can degrade to a
// logged warning without affecting analysis.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one pipeline run's ledger entry.
type RunRecord struct {
	ID             string
	Root           string
	StartedAt      time.Time
	FinishedAt     time.Time
	FilesCollected int
	FilesDigested  int
	FilesSkipped   int
	State          string // "done" or "failed"
	FailureStage   string // collecting, digesting, invoking; empty on success
	ErrorMessage   string
	ReportBytes    int
}

// Duration is the run's wall-clock time.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages the SQLite database holding run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath and
// initializes the schema. ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so subsequent statements wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run's ledger entry.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, root, started_at, finished_at,
			files_collected, files_digested, files_skipped,
			state, failure_stage, error_message, report_bytes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Root, rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
		rec.FilesCollected, rec.FilesDigested, rec.FilesSkipped,
		rec.State, rec.FailureStage, rec.ErrorMessage, rec.ReportBytes,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rec.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, started_at, finished_at,
		       files_collected, files_digested, files_skipped,
		       state, failure_stage, error_message, report_bytes
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.Root, &rec.StartedAt, &rec.FinishedAt,
			&rec.FilesCollected, &rec.FilesDigested, &rec.FilesSkipped,
			&rec.State, &rec.FailureStage, &rec.ErrorMessage, &rec.ReportBytes,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return records, nil
}

// Package state persists pipeline run history in a local sqlite database,
// separate from the database the pipeline itself writes to.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

// Run is one recorded pipeline execution.
type Run struct {
	ID         string
	Pipeline   string
	StartedAt  time.Time
	FinishedAt time.Time
	Tables     int
	Rows       int64
	Status     string // "success" or "error"
	Error      string
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	pipeline    TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	tables_built INTEGER NOT NULL DEFAULT 0,
	rows_built  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Store is a sqlite-backed run-history store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and initializes) the store at path. Pass ":memory:" for an
// ephemeral store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	logger.Debug("state store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a completed run.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, pipeline, started_at, finished_at, tables_built, rows_built, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Pipeline, run.StartedAt, run.FinishedAt,
		run.Tables, run.Rows, run.Status, run.Error)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	s.logger.Debug("run recorded", "run_id", run.ID, "status", run.Status)
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pipeline, started_at, finished_at, tables_built, rows_built, status, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Pipeline, &r.StartedAt, &r.FinishedAt,
			&r.Tables, &r.Rows, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

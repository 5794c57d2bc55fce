// Package engine executes a pipeline's compiled SQL against a database
// adapter. It owns everything the core model deliberately does not: the
// connection, execution order, seed loading, and run bookkeeping.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/adapter"
	"github.com/loomworks/loom/internal/pipeline"
	"github.com/loomworks/loom/internal/state"
)

// Config holds engine configuration.
type Config struct {
	// Adapter is the database adapter configuration.
	Adapter adapter.Config
	// SeedsDir is the directory of CSV files for source tables (optional).
	SeedsDir string
	// StatePath is the run-history database path; empty disables history.
	StatePath string
	// Logger is the structured logger (optional, discards if nil).
	Logger *slog.Logger
}

// Engine runs pipelines against a database.
type Engine struct {
	db        adapter.Adapter
	cfg       Config
	store     *state.Store
	logger    *slog.Logger
	connected bool
}

// TableResult reports one built table.
type TableResult struct {
	Table    string
	Rows     int64
	Duration time.Duration
}

// Result reports a completed pipeline run.
type Result struct {
	RunID  string
	Tables []TableResult
}

// New creates an engine with a lazy database connection: the adapter
// connects on the first Run or LoadSeeds call.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := adapter.New(cfg.Adapter.Type)
	if err != nil {
		return nil, err
	}

	var store *state.Store
	if cfg.StatePath != "" {
		store, err = state.Open(cfg.StatePath, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("engine initialized", "adapter", cfg.Adapter.Type)
	return &Engine{db: db, cfg: cfg, store: store, logger: logger}, nil
}

// Close releases the database connection and the state store.
func (e *Engine) Close() error {
	var firstErr error
	if e.connected {
		if err := e.db.Close(); err != nil {
			firstErr = err
		}
		e.connected = false
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Store returns the run-history store, or nil when history is disabled.
func (e *Engine) Store() *state.Store {
	return e.store
}

func (e *Engine) ensureConnected(ctx context.Context) error {
	if e.connected {
		return nil
	}
	if err := e.db.Connect(ctx, e.cfg.Adapter); err != nil {
		return err
	}
	e.connected = true
	return nil
}

// Run executes every derived table of the pipeline in dependency order:
// drop the old table, execute the compiled CREATE TABLE AS SELECT, count
// the result. The run is recorded in the state store whether it succeeds
// or fails.
func (e *Engine) Run(ctx context.Context, p *pipeline.Pipeline) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	startedAt := time.Now()

	runErr := e.run(ctx, p, result)

	if e.store != nil {
		run := &state.Run{
			ID:         result.RunID,
			Pipeline:   p.Name(),
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			Tables:     len(result.Tables),
			Status:     "success",
		}
		for _, t := range result.Tables {
			run.Rows += t.Rows
		}
		if runErr != nil {
			run.Status = "error"
			run.Error = runErr.Error()
		}
		if err := e.store.RecordRun(ctx, run); err != nil {
			e.logger.Warn("failed to record run", "run_id", result.RunID, "error", err)
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, p *pipeline.Pipeline, result *Result) error {
	if err := e.ensureConnected(ctx); err != nil {
		return err
	}

	tables, err := p.Derived()
	if err != nil {
		return err
	}

	for _, t := range tables {
		start := time.Now()
		name := t.PhysicalName()
		e.logger.Debug("building table", "table", name)

		if err := e.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", name, err)
		}
		if err := e.db.Exec(ctx, t.Compile()); err != nil {
			return fmt.Errorf("failed to build table %s: %w", name, err)
		}

		rows, err := e.db.RowCount(ctx, name)
		if err != nil {
			// The table was built; the count is informational only.
			e.logger.Warn("failed to count rows", "table", name, "error", err)
			rows = -1
		}

		dur := time.Since(start)
		e.logger.Info("table built", "table", name, "rows", rows, "duration", dur)
		result.Tables = append(result.Tables, TableResult{Table: name, Rows: rows, Duration: dur})
	}

	return nil
}

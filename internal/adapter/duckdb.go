package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register("duckdb", func() Adapter { return NewDuckDBAdapter() })
}

// DuckDBAdapter implements Adapter for DuckDB.
type DuckDBAdapter struct {
	db *sql.DB
}

// NewDuckDBAdapter creates an unconnected DuckDB adapter.
func NewDuckDBAdapter() *DuckDBAdapter {
	return &DuckDBAdapter{}
}

// Connect opens the database file, or an in-memory database when the path
// is empty.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb database: %w", err)
	}

	a.db = db
	return nil
}

func (a *DuckDBAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *DuckDBAdapter) Exec(ctx context.Context, sqlStr string) error {
	if a.db == nil {
		return fmt.Errorf("duckdb connection not established")
	}
	if _, err := a.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

func (a *DuckDBAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if a.db == nil {
		return nil, fmt.Errorf("duckdb connection not established")
	}
	rows, err := a.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

func (a *DuckDBAdapter) RowCount(ctx context.Context, table string) (int64, error) {
	if a.db == nil {
		return 0, fmt.Errorf("duckdb connection not established")
	}
	return rowCount(ctx, a.db, table)
}

// LoadCSV uses DuckDB's native CSV reader with header detection and type
// inference, replacing the table when it already exists.
func (a *DuckDBAdapter) LoadCSV(ctx context.Context, table, path string) error {
	if a.db == nil {
		return fmt.Errorf("duckdb connection not established")
	}
	escaped := strings.ReplaceAll(path, "'", "''")
	loadSQL := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		table, escaped)
	if _, err := a.db.ExecContext(ctx, loadSQL); err != nil {
		return fmt.Errorf("failed to load csv into %s: %w", table, err)
	}
	return nil
}

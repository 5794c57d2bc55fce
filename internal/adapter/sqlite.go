package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register("sqlite", func() Adapter { return NewSQLiteAdapter() })
}

// SQLiteAdapter implements Adapter over the pure-Go sqlite driver.
type SQLiteAdapter struct {
	db *sql.DB
}

// NewSQLiteAdapter creates an unconnected sqlite adapter.
func NewSQLiteAdapter() *SQLiteAdapter {
	return &SQLiteAdapter{}
}

// newSQLiteAdapterWithDB wraps an existing connection; used by tests to
// substitute a mock database.
func newSQLiteAdapterWithDB(db *sql.DB) *SQLiteAdapter {
	return &SQLiteAdapter{db: db}
}

// Connect opens the database file, or an in-memory database when the path
// is empty or ":memory:".
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	// The pipeline is built then read sequentially; a single connection
	// also keeps ":memory:" databases from silently splitting per conn.
	db.SetMaxOpenConns(1)

	a.db = db
	return nil
}

func (a *SQLiteAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *SQLiteAdapter) Exec(ctx context.Context, sqlStr string) error {
	if a.db == nil {
		return fmt.Errorf("sqlite connection not established")
	}
	if _, err := a.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

func (a *SQLiteAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if a.db == nil {
		return nil, fmt.Errorf("sqlite connection not established")
	}
	rows, err := a.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

func (a *SQLiteAdapter) RowCount(ctx context.Context, table string) (int64, error) {
	if a.db == nil {
		return 0, fmt.Errorf("sqlite connection not established")
	}
	return rowCount(ctx, a.db, table)
}

func (a *SQLiteAdapter) LoadCSV(ctx context.Context, table, path string) error {
	if a.db == nil {
		return fmt.Errorf("sqlite connection not established")
	}
	return loadCSVRows(ctx, a.db, table, path, func(int) string { return "?" })
}

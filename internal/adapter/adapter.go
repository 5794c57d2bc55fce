// Package adapter provides the database adapters the engine executes
// compiled pipeline SQL against. The core model never touches an adapter;
// it only produces the SQL text the engine hands over here.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type is the adapter name (e.g. "sqlite", "duckdb", "postgres").
	Type string

	// Path is the file path for file-based databases. Use ":memory:" for an
	// in-memory database.
	Path string

	// Host and Port identify network-based databases.
	Host string
	Port int

	// Database is the database name.
	Database string

	// Username and Password authenticate network-based databases.
	Username string
	Password string
}

// Rows wraps sql.Rows for a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter is the interface every database backend implements.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// RowCount returns the number of rows in a table.
	RowCount(ctx context.Context, table string) (int64, error)

	// LoadCSV loads a CSV file into a table, creating the table from the
	// header when it does not exist.
	LoadCSV(ctx context.Context, table string, path string) error
}

type factory func() Adapter

var registry = make(map[string]factory)

// Register makes an adapter available under the given name. Called from the
// init function of each driver file.
func Register(name string, fn factory) {
	registry[name] = fn
}

// New creates an adapter by name.
func New(name string) (Adapter, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown adapter %q (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names returns the registered adapter names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rowCount is the shared COUNT(*) implementation for sql.DB-backed adapters.
func rowCount(ctx context.Context, db *sql.DB, table string) (int64, error) {
	var count int64
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

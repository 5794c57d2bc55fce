package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

func init() {
	Register("postgres", func() Adapter { return NewPostgresAdapter() })
}

// PostgresAdapter implements Adapter for PostgreSQL via pgx.
type PostgresAdapter struct {
	db *sql.DB
}

// NewPostgresAdapter creates an unconnected postgres adapter.
func NewPostgresAdapter() *PostgresAdapter {
	return &PostgresAdapter{}
}

// Connect opens a connection built from host/port/database credentials.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=prefer",
		host, port, cfg.Database, cfg.Username, cfg.Password)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.db = db
	return nil
}

func (a *PostgresAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *PostgresAdapter) Exec(ctx context.Context, sqlStr string) error {
	if a.db == nil {
		return fmt.Errorf("postgres connection not established")
	}
	if _, err := a.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if a.db == nil {
		return nil, fmt.Errorf("postgres connection not established")
	}
	rows, err := a.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

func (a *PostgresAdapter) RowCount(ctx context.Context, table string) (int64, error) {
	if a.db == nil {
		return 0, fmt.Errorf("postgres connection not established")
	}
	return rowCount(ctx, a.db, table)
}

func (a *PostgresAdapter) LoadCSV(ctx context.Context, table, path string) error {
	if a.db == nil {
		return fmt.Errorf("postgres connection not established")
	}
	return loadCSVRows(ctx, a.db, table, path, func(i int) string {
		return fmt.Sprintf("$%d", i)
	})
}

package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// loadCSVRows loads a CSV file into table via row-by-row inserts inside a
// transaction. The table is created from the header (all TEXT columns) when
// it does not exist; type coercion is left to downstream casts, matching how
// raw data lands before a staging pass. placeholder renders the driver's
// bind marker for a 1-based position.
func loadCSVRows(ctx context.Context, db *sql.DB, table, path string, placeholder func(i int) string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open csv %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("failed to read csv header from %s: %w", path, err)
	}

	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, name := range header {
		cols[i] = strings.TrimSpace(name) + " TEXT"
		marks[i] = placeholder(i + 1)
	}
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(header, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read csv rows from %s: %w", path, err)
	}
	for _, record := range records {
		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert csv row into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

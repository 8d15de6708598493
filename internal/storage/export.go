package storage

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/evalregistry/internal/registry"
	"github.com/pfrederiksen/evalregistry/internal/table"

	_ "modernc.org/sqlite"
)

// sqliteTable is the table name used in the SQLite export.
const sqliteTable = "evaluations"

// WriteCSV writes the normalized table to path with one header row. Null
// cells become empty fields.
func WriteCSV(t *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			rec[i] = row.Cells[col]
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", row.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteSQLite writes the normalized table to a SQLite database at path,
// replacing any existing file. Boolean columns are stored as INTEGER 0/1,
// everything else as TEXT; null cells become SQL NULLs.
func WriteSQLite(t *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	_ = os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	boolCols := booleanColumns()
	defs := make([]string, len(t.Columns))
	quoted := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		colType := "TEXT"
		if boolCols[col] {
			colType = "INTEGER"
		}
		defs[i] = fmt.Sprintf("%q %s", col, colType)
		quoted[i] = fmt.Sprintf("%q", col)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE %q (%s)", sqliteTable, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := db.Prepare(fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		sqliteTable, strings.Join(quoted, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			v, ok := row.Cells[col]
			if !ok {
				args[i] = nil
				continue
			}
			if boolCols[col] {
				if v == "true" {
					args[i] = 1
				} else {
					args[i] = 0
				}
				continue
			}
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", row.ID, err)
		}
	}
	return nil
}

// booleanColumns lists the columns the transformations emit as "true" or
// "false" strings.
func booleanColumns() map[string]bool {
	cols := map[string]bool{table.DuplicateFlagColumn: true}
	for _, evalType := range registry.EvaluationTypes {
		cols[evalType] = true
	}
	return cols
}

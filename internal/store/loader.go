package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nixdex/nixdex/internal/models"
)

// BulkLoader loads transformed rows into one table of a store artifact as
// a single batched operation. Index documents can carry tens of thousands
// of entries; row-by-row autocommitted inserts are not acceptable.
type BulkLoader interface {
	// Load imports rows into table, binding fields in column order
	Load(ctx context.Context, dbPath, table string, columns []string, rows [][]string) error
}

// NewLoader returns the loader selected by the configuration
func NewLoader(cfg models.Config) BulkLoader {
	if cfg.Loader == models.LoaderSqlite3 {
		return &Sqlite3Loader{Path: cfg.Sqlite3Path}
	}
	return InsertLoader{}
}

// InsertLoader is the in-process loader: one transaction, one prepared
// insert statement executed per row, a single commit.
type InsertLoader struct{}

// Load implements BulkLoader
func (InsertLoader) Load(ctx context.Context, dbPath, table string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("open %s for import: %w", dbPath, err)}
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("begin import tx: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("prepare import into %s: %w", table, err)}
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(row))
		for i, field := range row {
			args[i] = field
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("import row into %s: %w", table, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("commit import into %s: %w", table, err)}
	}
	return nil
}

// Sqlite3Loader is the external-process loader: it spawns the sqlite3 CLI
// and streams CSV rows to its standard input. The CSV encoder quotes
// embedded delimiters and newlines in text fields.
type Sqlite3Loader struct {
	// Path is the sqlite3 binary to run
	Path string
}

// Load implements BulkLoader
func (l *Sqlite3Loader) Load(ctx context.Context, dbPath, table string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	bin := l.Path
	if bin == "" {
		bin = models.DefaultSqlite3Path
	}

	cmd := exec.CommandContext(ctx, bin, "-csv", dbPath, fmt.Sprintf(".import '|cat -' %s", table))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &models.IndexError{Type: models.ErrSubprocess, Err: fmt.Errorf("pipe to %s: %w", bin, err)}
	}
	if err := cmd.Start(); err != nil {
		return &models.IndexError{Type: models.ErrSubprocess, Err: fmt.Errorf("start %s: %w", bin, err)}
	}

	w := csv.NewWriter(stdin)
	writeErr := w.WriteAll(rows)
	if err := stdin.Close(); err != nil && writeErr == nil {
		writeErr = err
	}

	if err := cmd.Wait(); err != nil {
		return &models.IndexError{
			Type: models.ErrSubprocess,
			Err:  fmt.Errorf("%s import into %s: %w: %s", bin, table, err, strings.TrimSpace(stderr.String())),
		}
	}
	if writeErr != nil {
		return &models.IndexError{Type: models.ErrSubprocess, Err: fmt.Errorf("stream rows to %s: %w", bin, writeErr)}
	}
	return nil
}

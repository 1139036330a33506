package store

import (
	"context"
	"database/sql"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/nixdex/nixdex/internal/models"
)

func TestNewLoaderSelection(t *testing.T) {
	cfg := models.Config{Loader: models.LoaderInsert}
	if _, ok := NewLoader(cfg).(InsertLoader); !ok {
		t.Errorf("Expected the in-process loader for %q", cfg.Loader)
	}

	cfg = models.Config{Loader: models.LoaderSqlite3, Sqlite3Path: "/usr/bin/sqlite3"}
	l, ok := NewLoader(cfg).(*Sqlite3Loader)
	if !ok {
		t.Fatalf("Expected the subprocess loader for %q", cfg.Loader)
	}
	if l.Path != "/usr/bin/sqlite3" {
		t.Errorf("Loader path = %q, want the configured binary", l.Path)
	}
}

func TestInsertLoader(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pkgs.db")
	if err := recreate(context.Background(), dbPath, schemaPlain); err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	rows := [][]string{
		{"apps.vim", "vim", "9.0.1441"},
		{"apps.git", "git", "2.40.1"},
	}
	if err := (InsertLoader{}).Load(context.Background(), dbPath, "pkgs", plainColumns, rows); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pkgs`).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if n != 2 {
		t.Errorf("Loaded %d rows, want 2", n)
	}
}

func TestInsertLoaderEmptyRows(t *testing.T) {
	// No rows is a no-op, not an error
	dbPath := filepath.Join(t.TempDir(), "pkgs.db")
	if err := (InsertLoader{}).Load(context.Background(), dbPath, "pkgs", plainColumns, nil); err != nil {
		t.Errorf("Load of zero rows failed: %v", err)
	}
}

func TestInsertLoaderConstraintViolation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pkgs.db")
	if err := recreate(context.Background(), dbPath, schemaPlain); err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	rows := [][]string{
		{"apps.vim", "vim", "9.0.1441"},
		{"apps.vim", "vim", "9.0.1442"},
	}
	err := (InsertLoader{}).Load(context.Background(), dbPath, "pkgs", plainColumns, rows)
	if err == nil {
		t.Fatal("Load should fail on a duplicate attribute")
	}
	if !models.IsErrType(err, models.ErrStore) {
		t.Errorf("Expected a store error, got %v", err)
	}
}

func TestSqlite3Loader(t *testing.T) {
	if _, err := exec.LookPath("sqlite3"); err != nil {
		t.Skip("sqlite3 binary not available, skipping")
	}

	dbPath := filepath.Join(t.TempDir(), "pkgs.db")
	if err := recreate(context.Background(), dbPath, schemaPlain); err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// Fields with embedded delimiters exercise the CSV quoting
	rows := [][]string{
		{"apps.vim", "vim, the editor", "9.0.1441"},
		{"apps.git", "git\nscm", "2.40.1"},
	}
	l := &Sqlite3Loader{}
	if err := l.Load(context.Background(), dbPath, "pkgs", plainColumns, rows); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	var pname string
	row := db.QueryRow(`SELECT pname FROM pkgs WHERE attribute = ?`, "apps.vim")
	if err := row.Scan(&pname); err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}
	if pname != "vim, the editor" {
		t.Errorf("pname = %q, embedded comma was lost", pname)
	}

	row = db.QueryRow(`SELECT pname FROM pkgs WHERE attribute = ?`, "apps.git")
	if err := row.Scan(&pname); err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}
	if pname != "git\nscm" {
		t.Errorf("pname = %q, embedded newline was lost", pname)
	}
}

func TestSqlite3LoaderMissingBinary(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pkgs.db")
	if err := recreate(context.Background(), dbPath, schemaPlain); err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	l := &Sqlite3Loader{Path: "/nonexistent/sqlite3"}
	err := l.Load(context.Background(), dbPath, "pkgs", plainColumns, [][]string{{"a", "a", "1"}})
	if err == nil {
		t.Fatal("Load should fail when the binary does not exist")
	}
	if !models.IsErrType(err, models.ErrSubprocess) {
		t.Errorf("Expected a subprocess error, got %v", err)
	}
}

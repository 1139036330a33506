package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/nixdex/nixdex/internal/models"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schemaSystem is the DDL for the extended index variant: the pkgs table
// plus a meta table keyed by the same attribute.
const schemaSystem = `
CREATE TABLE "pkgs" (
    "attribute"  TEXT NOT NULL UNIQUE,
    "system"     TEXT,
    "pname"      TEXT,
    "version"    TEXT,
    PRIMARY KEY("attribute")
);

CREATE TABLE "meta" (
    "attribute"       TEXT NOT NULL UNIQUE,
    "broken"          INTEGER,
    "insecure"        INTEGER,
    "unsupported"     INTEGER,
    "unfree"          INTEGER,
    "description"     TEXT,
    "longdescription" TEXT,
    "homepage"        TEXT,
    "maintainers"     JSON,
    "position"        TEXT,
    "license"         JSON,
    "platforms"       JSON,
    FOREIGN KEY("attribute") REFERENCES "pkgs"("attribute"),
    PRIMARY KEY("attribute")
);

CREATE UNIQUE INDEX "attributes" ON "pkgs" ("attribute");
CREATE UNIQUE INDEX "metaattributes" ON "meta" ("attribute");
CREATE INDEX "pnames" ON "pkgs" ("pname");
`

// schemaPlain is the DDL for the plain name/version variant
const schemaPlain = `
CREATE TABLE "pkgs" (
    "attribute"  TEXT NOT NULL UNIQUE,
    "pname"      TEXT,
    "version"    TEXT,
    PRIMARY KEY("attribute")
);

CREATE UNIQUE INDEX "attributes" ON "pkgs" ("attribute");
CREATE INDEX "pnames" ON "pkgs" ("pname");
`

// Column orders for the bulk loads; they must match the DDL above.
var (
	systemColumns = []string{"attribute", "system", "pname", "version"}
	plainColumns  = []string{"attribute", "pname", "version"}
	metaColumns   = []string{
		"attribute", "broken", "insecure", "unsupported", "unfree",
		"description", "longdescription", "homepage", "maintainers",
		"position", "license", "platforms",
	}
)

// Store is a handle on a built index artifact, used for point lookups
type Store struct {
	db *sql.DB
}

// Open opens the store artifact at path for querying
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("open store %s: %w", path, err)}
	}
	return &Store{db: db}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// recreate deletes any existing artifact at dbPath and creates an empty
// store with the given schema. Rebuilds are always from scratch, never
// incremental. The handle is closed before returning so a subprocess
// loader sees a fully flushed file.
func recreate(ctx context.Context, dbPath, schema string) error {
	if _, err := os.Stat(dbPath); err == nil {
		if err := os.Remove(dbPath); err != nil {
			return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("remove stale artifact: %w", err)}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("create store %s: %w", dbPath, err)}
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return &models.IndexError{Type: models.ErrStore, Err: fmt.Errorf("create schema: %w", err)}
	}
	return nil
}

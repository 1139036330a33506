package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
)

// Builder rebuilds store artifacts from decoded index documents
type Builder struct {
	loader BulkLoader
}

// NewBuilder creates a builder using the given bulk loader
func NewBuilder(loader BulkLoader) *Builder {
	return &Builder{loader: loader}
}

// BuildSystem rebuilds the extended-variant store at dbPath: schema
// creation, transform, one bulk load for pkgs and a second for meta. The
// rebuild is successful only after both loads complete.
func (b *Builder) BuildSystem(ctx context.Context, dbPath string, doc *models.SystemIndex) error {
	if err := recreate(ctx, dbPath, schemaSystem); err != nil {
		return err
	}

	pkgRows := make([][]string, 0, len(doc.Packages))
	metaRows := make([][]string, 0, len(doc.Packages))
	for attr, entry := range doc.Packages {
		pkgRows = append(pkgRows, []string{attr, entry.System, entry.Pname, entry.Version})
		metaRows = append(metaRows, metaRow(attr, entry.Meta))
	}
	sortRows(pkgRows)
	sortRows(metaRows)

	if err := b.loader.Load(ctx, dbPath, "pkgs", systemColumns, pkgRows); err != nil {
		return err
	}
	if err := b.loader.Load(ctx, dbPath, "meta", metaColumns, metaRows); err != nil {
		return err
	}
	logrus.Infof("Imported %d packages into %s", len(pkgRows), dbPath)
	return nil
}

// BuildPlain rebuilds the plain-variant store at dbPath
func (b *Builder) BuildPlain(ctx context.Context, dbPath string, doc *models.PlainIndex) error {
	if err := recreate(ctx, dbPath, schemaPlain); err != nil {
		return err
	}

	rows := make([][]string, 0, len(doc.Packages))
	for attr, entry := range doc.Packages {
		rows = append(rows, []string{attr, entry.Pname, entry.Version})
	}
	sortRows(rows)

	if err := b.loader.Load(ctx, dbPath, "pkgs", plainColumns, rows); err != nil {
		return err
	}
	logrus.Infof("Imported %d packages into %s", len(rows), dbPath)
	return nil
}

// metaRow flattens one meta block into its positional row. Boolean flags
// coerce to "1"/"0" with absent input already defaulted to false by the
// decode rule; the homepage variant resolves to its first element here
// and nowhere deeper.
func metaRow(attr string, m models.PackageMeta) []string {
	return []string{
		attr,
		boolField(m.Broken),
		boolField(m.Insecure),
		boolField(m.Unsupported),
		boolField(m.Unfree),
		m.Description,
		m.LongDescription,
		m.Homepage.First(),
		jsonText(m.Maintainers),
		m.Position,
		jsonText(m.License),
		jsonText(m.Platforms),
	}
}

// boolField returns the stored integer form of a flag
func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// jsonText re-serializes a raw JSON value to compact text. Absent or null
// values, and values that fail to re-serialize, become empty text.
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

// sortRows orders rows by their leading attribute so rebuilt artifacts
// are byte-reproducible for one document.
func sortRows(rows [][]string) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i][0] < rows[j][0]
	})
}

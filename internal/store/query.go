package store

import (
	"context"
	"database/sql"

	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
)

// ResolveVersions resolves each declared attribute through an exact point
// lookup and returns the attribute to version mapping. An attribute
// contributes only when its lookup yields exactly one row; attributes
// with zero or several rows drop out of the result.
func (s *Store) ResolveVersions(ctx context.Context, attrs models.DeclaredSet) (map[string]string, error) {
	stmt, err := s.db.PrepareContext(ctx, `SELECT pname, version FROM pkgs WHERE attribute = ?`)
	if err != nil {
		return nil, &models.IndexError{Type: models.ErrStore, Err: err}
	}
	defer stmt.Close()

	resolved := make(map[string]string, len(attrs))
	dropped := 0
	for _, attr := range attrs.Sorted() {
		rec, err := lookupOne(ctx, stmt, attr)
		if err != nil {
			return nil, &models.IndexError{Type: models.ErrStore, Source: attr, Err: err}
		}
		if rec == nil {
			dropped++
			continue
		}
		resolved[rec.Attribute] = rec.Version
	}
	if dropped > 0 {
		logrus.Debugf("Dropped %d attributes without a unique match", dropped)
	}
	return resolved, nil
}

// lookupOne runs the point query for one attribute. A nil record means
// the match was not unique, which the caller treats as a drop rather
// than an error.
func lookupOne(ctx context.Context, stmt *sql.Stmt, attr string) (*models.PackageRecord, error) {
	rows, err := stmt.QueryContext(ctx, attr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec := models.PackageRecord{Attribute: attr}
	count := 0
	for rows.Next() {
		if count == 0 {
			if err := rows.Scan(&rec.Pname, &rec.Version); err != nil {
				return nil, err
			}
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if count != 1 {
		return nil, nil
	}
	return &rec, nil
}

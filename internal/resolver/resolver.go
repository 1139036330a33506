// Package resolver ties declaration collection, cache freshness and
// store lookups into the end to end version resolution flow.
package resolver

import (
	"context"

	"github.com/nixdex/nixdex/internal/cache"
	"github.com/nixdex/nixdex/internal/collect"
	"github.com/nixdex/nixdex/internal/index"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/nixdex/nixdex/internal/store"
)

// Resolver resolves declared attributes to pname/version pairs against
// one index source.
type Resolver struct {
	cfg     models.Config
	manager *cache.Manager
}

// New wires a resolver from cfg.
func New(cfg models.Config) *Resolver {
	return &Resolver{cfg: cfg, manager: cache.NewManager(cfg)}
}

// Stats summarizes one resolution run.
type Stats struct {
	// Declared is the size of the unioned declaration set
	Declared int

	// Resolved is the number of attributes that matched exactly one row
	Resolved int
}

// ResolveVersions collects the attributes declared in declPaths,
// brings the store artifact for src up to date, and resolves every
// attribute through it.
func (r *Resolver) ResolveVersions(ctx context.Context, src index.Source, declPaths []string) (map[string]string, Stats, error) {
	attrs := collect.Declared(declPaths, r.cfg.DeclKey)

	dbPath, err := r.manager.EnsureIndex(ctx, src)
	if err != nil {
		return nil, Stats{}, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, Stats{}, err
	}
	defer st.Close()

	resolved, err := st.ResolveVersions(ctx, attrs)
	if err != nil {
		return nil, Stats{}, err
	}
	return resolved, Stats{Declared: len(attrs), Resolved: len(resolved)}, nil
}

// EnsureIndex refreshes the store artifact for src and returns its path.
func (r *Resolver) EnsureIndex(ctx context.Context, src index.Source) (string, error) {
	return r.manager.EnsureIndex(ctx, src)
}

// EnsureOptions refreshes the cached options document for the
// configured release and returns its path.
func (r *Resolver) EnsureOptions(ctx context.Context) (string, error) {
	release, err := r.release(ctx)
	if err != nil {
		return "", err
	}
	return r.manager.EnsureOptions(ctx, release)
}

// SystemSource derives the extended system source for the configured
// release, consulting the host when none is configured.
func (r *Resolver) SystemSource(ctx context.Context) (index.Source, error) {
	release, err := r.release(ctx)
	if err != nil {
		return index.Source{}, err
	}
	return index.SystemSource(release), nil
}

func (r *Resolver) release(ctx context.Context) (string, error) {
	if r.cfg.Release != "" {
		return r.cfg.Release, nil
	}
	release, err := index.DetectRelease(ctx)
	if err != nil {
		return "", &models.IndexError{Type: models.ErrResolve, Err: err}
	}
	return release, nil
}

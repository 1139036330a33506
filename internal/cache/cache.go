// Package cache keeps local store artifacts in sync with the remote
// package indexes they are built from. Freshness is tracked per artifact
// with a version marker file next to the artifact; the marker is written
// only after a rebuild fully succeeds, so an interrupted rebuild is
// retried on the next run.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nixdex/nixdex/internal/index"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/nixdex/nixdex/internal/store"
	"github.com/sirupsen/logrus"
)

// Manager checks artifact freshness and rebuilds stale artifacts.
type Manager struct {
	cfg      models.Config
	resolver *index.VersionResolver
	fetcher  *index.Fetcher
	builder  *store.Builder
}

// NewManager wires a manager from cfg. The bulk loader variant and all
// remote endpoints come from cfg, nothing is read from the environment.
func NewManager(cfg models.Config) *Manager {
	return &Manager{
		cfg:      cfg,
		resolver: index.NewVersionResolver(cfg),
		fetcher:  index.NewFetcher(cfg),
		builder:  store.NewBuilder(store.NewLoader(cfg)),
	}
}

// EnsureIndex returns the path of a fresh store artifact for src,
// rebuilding it first when the recorded version lags the channel or the
// artifact is missing.
func (m *Manager) EnsureIndex(ctx context.Context, src index.Source) (string, error) {
	if err := os.MkdirAll(m.cfg.CacheDir, 0o755); err != nil {
		return "", &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}

	version, err := m.resolver.Resolve(ctx, src)
	if err != nil {
		return "", err
	}

	dbPath := filepath.Join(m.cfg.CacheDir, src.Key+".db")
	marker := filepath.Join(m.cfg.CacheDir, src.Key+".ver")
	if fresh(marker, dbPath, version) {
		logrus.Debugf("Store %s is up to date at version %s", src.Key, version)
		return dbPath, nil
	}

	lock, err := acquireLock(filepath.Join(m.cfg.CacheDir, src.Key+".lock"))
	if err != nil {
		return "", &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	defer lock.release()

	// Another process may have rebuilt while we waited for the lock.
	if fresh(marker, dbPath, version) {
		return dbPath, nil
	}

	if err := m.rebuild(ctx, src, dbPath); err != nil {
		return "", err
	}
	if err := commit(marker, version); err != nil {
		return "", &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	logrus.Infof("Store %s rebuilt at version %s", src.Key, version)
	return dbPath, nil
}

func (m *Manager) rebuild(ctx context.Context, src index.Source, dbPath string) error {
	switch src.Schema {
	case index.SchemaSystem:
		doc, err := m.fetcher.FetchSystem(ctx, src)
		if err != nil {
			return err
		}
		return m.builder.BuildSystem(ctx, dbPath, doc)
	case index.SchemaPlain:
		doc, err := m.fetcher.FetchPlain(ctx, src)
		if err != nil {
			return err
		}
		return m.builder.BuildPlain(ctx, dbPath, doc)
	default:
		// Raw documents are cached by EnsureOptions, not built into a
		// store
		return &models.IndexError{
			Type:   models.ErrStore,
			Source: src.Key,
			Err:    fmt.Errorf("%s documents cannot be built into a store", src.Schema),
		}
	}
}

// fresh reports whether artifact exists and its marker records want. A
// missing or unreadable marker means stale.
func fresh(marker, artifact, want string) bool {
	content, err := os.ReadFile(marker)
	if err != nil {
		return false
	}
	if strings.TrimSpace(string(content)) != want {
		return false
	}
	if _, err := os.Stat(artifact); err != nil {
		return false
	}
	return true
}

// commit records the version an artifact was built from.
func commit(marker, version string) error {
	return os.WriteFile(marker, []byte(version), 0o644)
}

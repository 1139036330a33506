package cache

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/nixdex/nixdex/internal/index"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
)

// EnsureOptions returns the path of a fresh options document for the
// given release, downloading it first when stale. The document is kept
// as decompressed JSON with no store rebuild; callers parse it directly.
func (m *Manager) EnsureOptions(ctx context.Context, release string) (string, error) {
	src := index.OptionsSource(release)
	if err := os.MkdirAll(m.cfg.CacheDir, 0o755); err != nil {
		return "", &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}

	version, err := m.resolver.Resolve(ctx, src)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.cfg.CacheDir, src.Key+".json")
	marker := filepath.Join(m.cfg.CacheDir, src.Key+".ver")
	if fresh(marker, path, version) {
		logrus.Debugf("Options document is up to date at version %s", version)
		return path, nil
	}

	lock, err := acquireLock(filepath.Join(m.cfg.CacheDir, src.Key+".lock"))
	if err != nil {
		return "", &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	defer lock.release()

	if fresh(marker, path, version) {
		return path, nil
	}

	if err := m.download(ctx, src, path); err != nil {
		return "", err
	}
	if err := commit(marker, version); err != nil {
		return "", &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	logrus.Infof("Options document refreshed at version %s", version)
	return path, nil
}

func (m *Manager) download(ctx context.Context, src index.Source, path string) error {
	body, err := m.fetcher.Get(ctx, src)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(path)
	if err != nil {
		return &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	if err := f.Close(); err != nil {
		return &models.IndexError{Type: models.ErrStore, Source: src.Key, Err: err}
	}
	return nil
}

package index

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
)

// VersionResolver discovers the canonical remote version tag for an index
// source by following its channel redirect. Resolution is network-bound;
// the client timeout bounds it.
type VersionResolver struct {
	base   string
	client *http.Client
}

// NewVersionResolver creates a resolver for the configured channels server
func NewVersionResolver(cfg models.Config) *VersionResolver {
	return &VersionResolver{
		base:   cfg.ChannelsURL,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Resolve follows the source's version redirect and returns the last path
// segment of the final location, with the source's prefix token stripped
func (r *VersionResolver) Resolve(ctx context.Context, src Source) (string, error) {
	url := src.VersionURL(r.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &models.IndexError{Type: models.ErrResolve, Source: src.Key, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &models.IndexError{Type: models.ErrResolve, Source: src.Key, Err: err}
	}
	defer resp.Body.Close()

	// Only the final URL matters here; drain the body so the connection
	// can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	segment := lastPathSegment(resp.Request.URL.Path)
	if segment == "" {
		return "", &models.IndexError{
			Type:   models.ErrResolve,
			Source: src.Key,
			Err:    errors.New("no path segments in resolved location"),
		}
	}

	version := strings.TrimPrefix(segment, src.Prefix)
	logrus.Debugf("Resolved %s to version %s", src.Channel, version)
	return version, nil
}

// lastPathSegment isolates the trailing segment of a URL path
func lastPathSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

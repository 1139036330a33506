package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// acceptEncoding lists the content codings negotiated with the server
const acceptEncoding = "br, zstd, gzip"

// Fetcher downloads compressed index documents and decodes them into
// in-memory documents of either schema variant
type Fetcher struct {
	base   string
	client *http.Client
}

// NewFetcher creates a fetcher for the configured channels server
func NewFetcher(cfg models.Config) *Fetcher {
	return &Fetcher{
		base:   cfg.ChannelsURL,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Get issues the source's document request and returns a transparently
// decompressed body. Any non-success HTTP status is a fetch error.
func (f *Fetcher) Get(ctx context.Context, src Source) (io.ReadCloser, error) {
	url := src.DocumentURL(f.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &models.IndexError{Type: models.ErrFetch, Source: src.Key, Err: err}
	}
	req.Header.Set("Accept-Encoding", acceptEncoding)

	logrus.Infof("Downloading %s for channel %s", src.Document, src.Channel)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.IndexError{Type: models.ErrFetch, Source: src.Key, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &models.IndexError{
			Type:   models.ErrFetch,
			Source: src.Key,
			Err:    fmt.Errorf("unexpected status %s for %s", resp.Status, url),
		}
	}

	coding := resp.Header.Get("Content-Encoding")
	if coding == "" {
		coding = codingForPath(resp.Request.URL.Path)
	}
	body, err := wrapCoding(resp.Body, coding)
	if err != nil {
		resp.Body.Close()
		return nil, &models.IndexError{Type: models.ErrDecode, Source: src.Key, Err: err}
	}
	return body, nil
}

// FetchSystem downloads and decodes an extended-variant index document
func (f *Fetcher) FetchSystem(ctx context.Context, src Source) (*models.SystemIndex, error) {
	body, err := f.Get(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var doc models.SystemIndex
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, &models.IndexError{Type: models.ErrDecode, Source: src.Key, Err: err}
	}
	if doc.Packages == nil {
		return nil, &models.IndexError{
			Type:   models.ErrDecode,
			Source: src.Key,
			Err:    errors.New("document has no packages member"),
		}
	}
	logrus.Debugf("Decoded %d packages from %s", len(doc.Packages), src.Channel)
	return &doc, nil
}

// FetchPlain downloads and decodes a plain-variant index document
func (f *Fetcher) FetchPlain(ctx context.Context, src Source) (*models.PlainIndex, error) {
	body, err := f.Get(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var doc models.PlainIndex
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, &models.IndexError{Type: models.ErrDecode, Source: src.Key, Err: err}
	}
	if doc.Packages == nil {
		return nil, &models.IndexError{
			Type:   models.ErrDecode,
			Source: src.Key,
			Err:    errors.New("document has no packages member"),
		}
	}
	logrus.Debugf("Decoded %d packages from %s", len(doc.Packages), src.Channel)
	return &doc, nil
}

// decompressed couples a decoding reader with the resources it owns
type decompressed struct {
	io.Reader
	closer func() error
}

// Close releases the decoder and the underlying body
func (d *decompressed) Close() error {
	return d.closer()
}

// wrapCoding wraps rc with the decoder for the given content coding. An
// empty coding returns the body unchanged.
func wrapCoding(rc io.ReadCloser, coding string) (io.ReadCloser, error) {
	switch coding {
	case "":
		return rc, nil
	case "br":
		return &decompressed{Reader: brotli.NewReader(rc), closer: rc.Close}, nil
	case "zstd":
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &decompressed{
			Reader: dec,
			closer: func() error {
				dec.Close()
				return rc.Close()
			},
		}, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &decompressed{Reader: gz, closer: rc.Close}, nil
	case "xz":
		xr, err := xz.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &decompressed{Reader: xr, closer: rc.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported content coding %q", coding)
	}
}

// codingForPath infers the content coding from the document suffix when
// the server declared none. Channel mirrors commonly serve pre-compressed
// documents as opaque bytes.
func codingForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".br"):
		return "br"
	case strings.HasSuffix(path, ".zst"):
		return "zstd"
	case strings.HasSuffix(path, ".gz"):
		return "gzip"
	case strings.HasSuffix(path, ".xz"):
		return "xz"
	}
	return ""
}

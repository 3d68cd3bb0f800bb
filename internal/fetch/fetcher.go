// Package fetch downloads county PDF documents over HTTP.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taxdeedflow/extraction-engine/internal/observability"
)

const (
	defaultTimeout = 60 * time.Second
	defaultMaxSize = 100 << 20 // 100 MiB
)

// Result describes a completed download.
type Result struct {
	Path   string
	SHA256 string
	Size   int64
}

// Fetcher downloads PDFs to local temp files.
type Fetcher struct {
	client  *http.Client
	maxSize int64
	logger  *observability.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithMaxSize caps the downloaded body size in bytes.
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) {
		f.maxSize = n
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(logger *observability.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	f := &Fetcher{
		client:  &http.Client{Timeout: defaultTimeout},
		maxSize: defaultMaxSize,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the document at url into dir and returns the local path
// together with the body's SHA-256. An empty dir uses the system temp
// directory. The caller owns the file.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "taxdeedflow-extraction/1.0")
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" &&
		!strings.Contains(ct, "pdf") && !strings.Contains(ct, "octet-stream") {
		f.logger.Warn().Str("url", url).Str("content_type", ct).Msg("Unexpected content type for PDF download")
	}

	if dir == "" {
		dir = os.TempDir()
	}
	tmp, err := os.CreateTemp(dir, "taxdeed-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(resp.Body, f.maxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if size > f.maxSize {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("download %s: body exceeds %d bytes", url, f.maxSize)
	}
	if size == 0 {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("download %s: empty body", url)
	}

	result := &Result{
		Path:   filepath.Clean(tmp.Name()),
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
		Size:   size,
	}
	f.logger.Debug().
		Str("url", url).
		Str("path", result.Path).
		Int("bytes", int(size)).
		Msg("Downloaded document")
	return result, nil
}

// HashFile returns the SHA-256 of a local file, for documents that were
// supplied directly instead of downloaded.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

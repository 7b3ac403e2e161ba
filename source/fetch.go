package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrEmptySource is returned when no path or URL was given.
var ErrEmptySource = errors.New("empty source")

// ErrTooLarge is returned when a remote document exceeds maxDocumentSize.
var ErrTooLarge = errors.New("document too large")

// maxDocumentSize bounds remote reads.
const maxDocumentSize = 32 << 20

// Fetcher reads documents from URLs or local files.
type Fetcher struct {
	httpClient *http.Client
	maxSize    int64
}

// NewFetcher creates a fetcher whose HTTP requests time out after timeout
// (zero means no timeout).
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxSize:    maxDocumentSize,
	}
}

// IsURL reports whether urlOrPath is fetched over HTTP.
func IsURL(urlOrPath string) bool {
	return strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://")
}

// Fetch returns the raw bytes of a URL or local file and the content type
// reported by the server (empty for files).
func (f *Fetcher) Fetch(ctx context.Context, urlOrPath string) ([]byte, string, error) {
	if urlOrPath == "" {
		return nil, "", ErrEmptySource
	}

	if !IsURL(urlOrPath) {
		data, err := os.ReadFile(urlOrPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", urlOrPath, err)
		}
		return data, "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", urlOrPath, err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, urlOrPath, f.maxSize)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves a raw database image from a source location.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// StatusError is returned when the remote server answers with a non 2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPFetcher fetches http(s) sources over the network and reads
// everything else (file:// URLs, bare paths) from disk.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher with the given per request timeout.
// maxBytes caps the image size; zero means unlimited.
func NewFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch returns the full body of src.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse source %q: %w", src, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, src)
	case "file":
		return f.readFile(u.Path)
	default:
		return f.readFile(src)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/x-sqlite3, application/octet-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: src, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("fetch %s: image larger than %d bytes", src, f.maxBytes)
	}
	return data, nil
}

func (f *HTTPFetcher) readFile(path string) ([]byte, error) {
	if f.maxBytes > 0 {
		if fi, err := os.Stat(path); err == nil && fi.Size() > f.maxBytes {
			return nil, fmt.Errorf("read %s: image larger than %d bytes", path, f.maxBytes)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

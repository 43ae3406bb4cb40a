// Package fetch implements the Fetcher and BinaryFetcher interfaces.
// It performs HTTP GET requests with sensible defaults for harvesting pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/pagenote/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "pagenote/1.0 (https://github.com/gaurav-prasanna/pagenote)"

	// maxBodySize caps a single response (document or image).
	maxBodySize = 32 << 20
)

// HTTPFetcher fetches documents and images via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// New creates an HTTPFetcher with a sensible timeout.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the HTML content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	status, body, err := f.get(ctx, url, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	return &core.FetchResult{
		URL:        url,
		StatusCode: status,
		HTML:       string(body),
	}, nil
}

// FetchBinary retrieves the raw bytes at the given URL.
func (f *HTTPFetcher) FetchBinary(ctx context.Context, url string) ([]byte, error) {
	_, body, err := f.get(ctx, url, "*/*")
	return body, err
}

func (f *HTTPFetcher) get(ctx context.Context, url, accept string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// Package fetch is the plain-HTTP side of page retrieval: raw HTML for
// the non-browser fallback and raw image bytes for ASCII conversion.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hazyhaar/termweb/internal/useragent"
)

// Config configures the fetcher.
type Config struct {
	// Timeout bounds one request end to end. Default: 20s.
	Timeout time.Duration

	// MaxBytes caps a response body. Default: 10 MiB.
	MaxBytes int64

	// UserAgent sent on every request. Default: a desktop Chrome string.
	UserAgent string

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = useragent.Desktop
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
}

// Result is a fetched document.
type Result struct {
	Body        []byte
	ContentType string
	// FinalURL is the URL after redirects; relative links resolve against it.
	FinalURL string
}

// Fetcher retrieves documents and images over plain HTTP.
type Fetcher struct {
	cfg Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{cfg: cfg}
}

// Fetch retrieves an HTML document.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	return f.do(ctx, rawURL, "text/html,application/xhtml+xml,*/*;q=0.8", "")
}

// FetchImage retrieves raw image bytes. The referer matters: some CDNs
// refuse hotlinked requests without one.
func (f *Fetcher) FetchImage(ctx context.Context, rawURL, referer string) (*Result, error) {
	return f.do(ctx, rawURL, "image/avif,image/webp,image/png,image/*;q=0.8,*/*;q=0.5", referer)
}

func (f *Fetcher) do(ctx context.Context, rawURL, accept, referer string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en-US;q=0.8,en;q=0.7")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := f.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch: get %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body %s: %w", rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}

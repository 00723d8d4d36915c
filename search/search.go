// Package search turns a query into web results, either through the
// Custom Search JSON API or by scraping a result page in the browser.
package search

import (
	"context"
	"fmt"
)

// Result is one search hit.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Backend resolves a query into results.
type Backend interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	// Name identifies the backend in logs and the session status line.
	Name() string
}

// Provider selects which backend handles queries.
type Provider string

const (
	// ProviderAuto prefers the API when credentials exist, else the browser.
	ProviderAuto    Provider = "auto"
	ProviderCSE     Provider = "cse"
	ProviderBrowser Provider = "browser"
)

// ParseProvider normalizes a user-supplied provider name. The scripted
// original accepted playwright aliases for the browser scraper.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "", "auto":
		return ProviderAuto, nil
	case "cse", "api":
		return ProviderCSE, nil
	case "browser", "pw", "playwright":
		return ProviderBrowser, nil
	}
	return "", fmt.Errorf("search: unknown provider %q", s)
}

// Select picks the backend for a provider. cse may be nil when no
// credentials are configured; browser may be nil when Chrome is absent.
func Select(p Provider, cse, browser Backend) (Backend, error) {
	switch p {
	case ProviderCSE:
		if cse == nil {
			return nil, fmt.Errorf("search: cse backend not configured")
		}
		return cse, nil
	case ProviderBrowser:
		if browser == nil {
			return nil, fmt.Errorf("search: browser backend unavailable")
		}
		return browser, nil
	default:
		if cse != nil {
			return cse, nil
		}
		if browser != nil {
			return browser, nil
		}
		return nil, fmt.Errorf("search: no backend available")
	}
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hazyhaar/termweb/capture"
)

// extractJS pulls organic results from a Google SERP. Three strategies,
// strongest first: the stable container class, heading-anchored blocks,
// then any anchor with an h3. Internal and service links are filtered
// on the Go side.
const extractJS = `() => {
	const out = [];
	const push = (a, h3) => {
		if (!a || !a.href) return;
		const block = a.closest('div');
		let snippet = '';
		if (block && block.parentElement) {
			const t = block.parentElement.innerText || '';
			snippet = t.replace(/\s+/g, ' ').trim().slice(0, 300);
		}
		out.push({
			title: (h3 ? h3.innerText : a.innerText || '').trim(),
			link: a.href,
			snippet,
		});
	};
	let blocks = document.querySelectorAll('div.g');
	if (blocks.length) {
		for (const g of blocks) push(g.querySelector('a[href]'), g.querySelector('h3'));
	}
	if (!out.length) {
		for (const h3 of document.querySelectorAll('a h3')) {
			push(h3.closest('a'), h3);
		}
	}
	if (!out.length) {
		for (const a of document.querySelectorAll('#search a[href^="http"]')) {
			push(a, a.querySelector('h3'));
		}
	}
	return JSON.stringify(out);
}`

// Browser scrapes result pages through the shared Chrome instance.
type Browser struct {
	cap    *capture.Capturer
	logger *slog.Logger
}

// NewBrowser creates the scraping backend on top of an existing capturer.
func NewBrowser(cap *capture.Capturer, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{cap: cap, logger: logger}
}

func (b *Browser) Name() string { return "browser" }

// Search loads a result page and extracts organic hits.
func (b *Browser) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if !b.cap.Ready() {
		return nil, fmt.Errorf("search: browser not available")
	}

	page, err := b.cap.NewPage("")
	if err != nil {
		return nil, fmt.Errorf("search: open page: %w", err)
	}
	defer page.Close()

	serp := "https://www.google.com/search?q=" + url.QueryEscape(query) +
		"&hl=ja&gl=JP&num=20&pws=0&safe=off"
	if err := page.Context(ctx).Navigate(serp); err != nil {
		return nil, fmt.Errorf("search: navigate serp: %w", err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		b.logger.Warn("search: serp load timeout", "error", err)
	}

	if capture.DismissConsent(page) {
		b.logger.Info("search: dismissed consent interstitial")
	}

	// Best effort: the results container may be renamed at any time.
	if _, err := page.Timeout(3 * time.Second).Element("#search"); err != nil {
		b.logger.Warn("search: results container not found, extracting anyway")
	}

	res, err := page.Context(ctx).Eval(extractJS)
	if err != nil {
		return nil, fmt.Errorf("search: extract results: %w", err)
	}
	var raw []Result
	if err := json.Unmarshal([]byte(res.Value.Str()), &raw); err != nil {
		return nil, fmt.Errorf("search: decode results: %w", err)
	}

	results := filterResults(raw, limit)
	if len(results) == 0 {
		return nil, fmt.Errorf("search: no results extracted for %q", query)
	}
	return results, nil
}

// filterResults drops Google-internal links and duplicates, keeping the
// first limit organic hits.
func filterResults(raw []Result, limit int) []Result {
	if limit < 1 {
		limit = 10
	}
	seen := make(map[string]bool)
	var out []Result
	for _, r := range raw {
		if r.Link == "" || r.Title == "" {
			continue
		}
		if strings.Contains(r.Link, "/search?") ||
			strings.Contains(r.Link, "webcache.googleusercontent.com") ||
			strings.Contains(r.Link, "policies.google.com") ||
			strings.Contains(r.Link, "accounts.google.com") {
			continue
		}
		if seen[r.Link] {
			continue
		}
		seen[r.Link] = true
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Package session holds the per-connection browsing state: current page,
// link and image registries, history, and the render settings commands
// mutate. One Session belongs to exactly one telnet connection.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hazyhaar/termweb/fallback"
	"github.com/hazyhaar/termweb/fetch"
	"github.com/hazyhaar/termweb/geom"
	"github.com/hazyhaar/termweb/internal/useragent"
	"github.com/hazyhaar/termweb/render"
	"github.com/hazyhaar/termweb/search"
)

// Snapshotter produces geometry snapshots. Satisfied by *capture.Capturer.
type Snapshotter interface {
	Ready() bool
	Snapshot(ctx context.Context, pageURL, userAgent string) (*geom.Snapshot, error)
}

// Fetcher retrieves documents and images over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Result, error)
	FetchImage(ctx context.Context, rawURL, referer string) (*fetch.Result, error)
}

// Config wires a session's collaborators. Snapshotter, CSE, and Browser
// may be nil; the session degrades to whatever remains.
type Config struct {
	Snapshotter Snapshotter
	Fetcher     Fetcher
	CSE         search.Backend
	Browser     search.Backend
	Defaults    Settings
	Logger      *slog.Logger
}

// Session is one connection's browsing state.
type Session struct {
	cfg      Config
	settings Settings
	logger   *slog.Logger

	currentURL string
	pageText   string
	links      []string
	images     []string
	results    []search.Result

	history []string
	histPos int
}

// New creates a session with the configured default settings.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Defaults == (Settings{}) {
		cfg.Defaults = DefaultSettings()
	}
	return &Session{
		cfg:      cfg,
		settings: cfg.Defaults,
		logger:   cfg.Logger,
		histPos:  -1,
	}
}

// Settings exposes the mutable render settings.
func (s *Session) Settings() *Settings { return &s.settings }

// Text returns the current page rendering.
func (s *Session) Text() string { return s.pageText }

// CurrentURL returns the page the session is on, empty before first open.
func (s *Session) CurrentURL() string { return s.currentURL }

// Links returns the current link registry in index order.
func (s *Session) Links() []string { return s.links }

// Images returns the current image registry in index order.
func (s *Session) Images() []string { return s.images }

// Results returns the pending search results, if any.
func (s *Session) Results() []search.Result { return s.results }

// LoadURL opens a page and pushes it onto history.
func (s *Session) LoadURL(ctx context.Context, rawURL string) error {
	rawURL = normalizeURL(rawURL)
	if err := s.navigate(ctx, rawURL); err != nil {
		return err
	}
	// Opening a page invalidates any forward history.
	s.history = append(s.history[:s.histPos+1], rawURL)
	s.histPos = len(s.history) - 1
	s.results = nil
	return nil
}

// Reload re-renders the current page without touching history.
func (s *Session) Reload(ctx context.Context) error {
	if s.currentURL == "" {
		return fmt.Errorf("session: no page to reload")
	}
	return s.navigate(ctx, s.currentURL)
}

// Back steps to the previous history entry.
func (s *Session) Back(ctx context.Context) error {
	if s.histPos <= 0 {
		return fmt.Errorf("session: no earlier page")
	}
	if err := s.navigate(ctx, s.history[s.histPos-1]); err != nil {
		return err
	}
	s.histPos--
	return nil
}

// Forward steps to the next history entry.
func (s *Session) Forward(ctx context.Context) error {
	if s.histPos < 0 || s.histPos >= len(s.history)-1 {
		return fmt.Errorf("session: no later page")
	}
	if err := s.navigate(ctx, s.history[s.histPos+1]); err != nil {
		return err
	}
	s.histPos++
	return nil
}

// OpenLink opens the 1-based link registry entry n.
func (s *Session) OpenLink(ctx context.Context, n int) error {
	if n < 1 || n > len(s.links) {
		return fmt.Errorf("session: link %d out of range 1-%d", n, len(s.links))
	}
	return s.LoadURL(ctx, s.links[n-1])
}

// OpenResult opens the 1-based search result n.
func (s *Session) OpenResult(ctx context.Context, n int) error {
	if n < 1 || n > len(s.results) {
		return fmt.Errorf("session: result %d out of range 1-%d", n, len(s.results))
	}
	return s.LoadURL(ctx, s.results[n-1].Link)
}

// OpenNumeric resolves a bare number the way the prompt does: pending
// search results win over page links.
func (s *Session) OpenNumeric(ctx context.Context, n int) error {
	if len(s.results) > 0 {
		return s.OpenResult(ctx, n)
	}
	return s.OpenLink(ctx, n)
}

// Search runs a query on the configured provider and renders a listing.
func (s *Session) Search(ctx context.Context, query string) error {
	backend, err := search.Select(s.settings.Provider, s.cfg.CSE, s.cfg.Browser)
	if err != nil {
		return err
	}
	results, err := backend.Search(ctx, query, 10)
	if err != nil {
		return fmt.Errorf("session: search %q: %w", query, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("session: no results for %q", query)
	}
	s.results = results

	var b strings.Builder
	fmt.Fprintf(&b, "Search (%s): %s\n\n", backend.Name(), query)
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n    <%s>\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "    %s\n", r.Snippet)
		}
	}
	b.WriteString("\nEnter a number to open a result.\n")
	s.pageText = b.String()
	return nil
}

// Save writes the current page text to path.
func (s *Session) Save(path string) error {
	if s.pageText == "" {
		return fmt.Errorf("session: nothing to save")
	}
	if err := os.WriteFile(path, []byte(s.pageText), 0o644); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// ImageArt renders the 1-based image registry entry n as ASCII art.
func (s *Session) ImageArt(ctx context.Context, n int) (string, error) {
	if n < 1 || n > len(s.images) {
		return "", fmt.Errorf("session: image %d out of range 1-%d", n, len(s.images))
	}
	return s.renderArt(ctx, s.images[n-1]), nil
}

// navigate renders rawURL into the session, preferring the browser
// capture and degrading to the plain-HTTP path.
func (s *Session) navigate(ctx context.Context, rawURL string) error {
	ua := userAgent(s.settings.MobileUA)

	if s.settings.JSMode && s.cfg.Snapshotter != nil && s.cfg.Snapshotter.Ready() {
		snap, err := s.cfg.Snapshotter.Snapshot(ctx, rawURL, ua)
		if err == nil {
			res := render.Render(ctx, snap, s.renderOptions(), s.artFunc())
			s.currentURL = snap.FinalURL
			s.pageText = res.Text
			s.links = res.Links.URLs()
			s.images = res.Images.URLs()
			return nil
		}
		s.logger.Warn("session: capture failed, using fallback", "url", rawURL, "error", err)
	}

	return s.navigateFallback(ctx, rawURL)
}

func (s *Session) navigateFallback(ctx context.Context, rawURL string) error {
	if s.cfg.Fetcher == nil {
		return fmt.Errorf("session: no fetcher configured")
	}
	res, err := s.cfg.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("session: open %s: %w", rawURL, err)
	}
	page, err := fallback.Render(res.Body, res.FinalURL, s.settings.FilterIcons)
	if err != nil {
		return fmt.Errorf("session: render %s: %w", rawURL, err)
	}

	s.currentURL = res.FinalURL
	s.links = page.Links
	s.images = page.Images
	s.pageText = s.assembleFallback(ctx, page, res.FinalURL)
	return nil
}

// assembleFallback builds the page text for the non-projected path:
// body, inline art for the first few images, then the listings tail.
func (s *Session) assembleFallback(ctx context.Context, page *fallback.Page, finalURL string) string {
	var b strings.Builder
	b.WriteString(page.Text)
	b.WriteString("\n")

	if s.settings.AutoImages {
		budget := s.settings.AutoImageMax
		for i, src := range page.Images {
			if budget <= 0 {
				break
			}
			fmt.Fprintf(&b, "\n[IMG %d]\n%s", i+1, s.renderArt(ctx, src))
			budget--
		}
	}

	fmt.Fprintf(&b, "\n# %s\n", finalURL)
	if len(page.Links) > 0 {
		b.WriteString("\n-- Links --\n")
		for i, u := range page.Links {
			fmt.Fprintf(&b, "[%d] <%s>\n", i+1, u)
		}
	}
	if len(page.Images) > 0 {
		b.WriteString("\n-- Images --\n")
		for i, u := range page.Images {
			fmt.Fprintf(&b, "[%d] <%s>\n", i+1, u)
		}
	}
	return render.CollapseBlank(b.String())
}

func (s *Session) renderOptions() render.Options {
	opts := render.Options{
		TermWidth:       s.settings.Width,
		RowAspect:       s.settings.RowAspect,
		ASCIIWidth:      s.settings.ASCIIWidth,
		AutoImageMax:    s.settings.AutoImageMax,
		AutoImages:      s.settings.AutoImages,
		FilterIconLinks: s.settings.FilterIcons,
	}
	return opts
}

func (s *Session) artFunc() render.ArtFunc {
	if !s.settings.AutoImages {
		return nil
	}
	return func(ctx context.Context, src string) string {
		return s.renderArt(ctx, src)
	}
}

func userAgent(mobile bool) string {
	if mobile {
		return useragent.Mobile
	}
	return useragent.Desktop
}

// normalizeURL defaults bare hostnames to https.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// Package capture drives a headless Chrome via Rod to produce geometry
// snapshots: each visible whitelisted element's tag, rectangle, z-index,
// text, and link/image attributes after script execution.
package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/termweb/internal/useragent"
)

// Desktop and mobile User-Agent strings offered by the session's ua command.
const (
	UADesktop = useragent.Desktop
	UAMobile  = useragent.Mobile
)

// DefaultSelectors is the CSS whitelist of elements reported as geometry
// nodes. Narrowing it is the configuration-level way to quiet noisy pages.
const DefaultSelectors = "header,nav,main,article,section,aside,footer,div,figure,figcaption," +
	"h1,h2,h3,h4,h5,h6,p,ul,ol,li,a,button,input,textarea,select,table,th,td,span,img"

// Config configures the capturer.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headful shows a real browser window, for sites that block headless.
	Headful bool

	// ViewportWidth/Height of the emulated browser. Defaults: 1200x1800.
	ViewportWidth  int
	ViewportHeight int

	// Timeout bounds navigation and evaluation. Default: 20s.
	Timeout time.Duration

	// MaxNodes caps how many geometry nodes one page may report. Default: 800.
	MaxNodes int

	// Selectors is the CSS whitelist. Default: DefaultSelectors.
	Selectors string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1200
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 1800
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = 800
	}
	if c.Selectors == "" {
		c.Selectors = DefaultSelectors
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Capturer manages the Chrome instance shared by all sessions. Pages are
// created per call, so concurrent captures do not share tab state.
type Capturer struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// New creates a Capturer. Call Start to launch or attach to Chrome.
func New(cfg Config) *Capturer {
	cfg.defaults()
	return &Capturer{cfg: cfg}
}

// Start launches Chrome (or connects to RemoteURL). A failure here means
// the capability is absent; callers degrade to the plain-text path.
func (c *Capturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("capture: capturer is closed")
	}
	if c.browser != nil {
		return nil
	}

	wsURL := c.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(!c.cfg.Headful)
		// Anti-detection flag, same as the scripted original.
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("capture: launch: %w", err)
		}
		c.lnch = l
		wsURL = u
		c.cfg.Logger.Info("capture: launched local chrome", "url", wsURL, "headful", c.cfg.Headful)
	} else {
		c.cfg.Logger.Info("capture: connecting to remote chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("capture: connect: %w", err)
	}
	c.browser = b
	return nil
}

// Ready reports whether a browser is available.
func (c *Capturer) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.browser != nil && !c.closed
}

// Close shuts down Chrome.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.browser != nil {
		c.browser.Close()
		c.browser = nil
	}
	if c.lnch != nil {
		c.lnch.Cleanup()
		c.lnch = nil
	}
	return nil
}

// NewPage hands out a configured stealth page for callers that drive
// their own navigation, such as the search result scraper. The caller
// owns the page and must Close it.
func (c *Capturer) NewPage(userAgent string) (*rod.Page, error) {
	return c.newPage(userAgent)
}

// newPage creates a stealth page with the given UA, the configured
// viewport, and a Japanese-leaning Accept-Language, mirroring the
// capture profile the dedup heuristics were tuned against.
func (c *Capturer) newPage(userAgent string) (*rod.Page, error) {
	c.mu.Lock()
	b := c.browser
	c.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("capture: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("capture: create page: %w", err)
	}

	if userAgent == "" {
		userAgent = UADesktop
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		page.Close()
		return nil, fmt.Errorf("capture: set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             c.cfg.ViewportWidth,
		Height:            c.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("capture: set viewport: %w", err)
	}
	if _, err := page.SetExtraHeaders([]string{
		"Accept-Language", "ja-JP,ja;q=0.9,en-US;q=0.8,en;q=0.7",
	}); err != nil {
		c.cfg.Logger.Warn("capture: extra headers failed", "error", err)
	}
	return page, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// WHAT: An empty path produces a fully-defaulted config.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen.Addr() != "127.0.0.1:2323" {
		t.Errorf("addr = %q", cfg.Listen.Addr())
	}
	if cfg.Terminal.Width != 110 || cfg.Terminal.RowAspect != 0.52 {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if cfg.Terminal.FilterIconLinks == nil || !*cfg.Terminal.FilterIconLinks {
		t.Error("icon filter should default on")
	}
	if cfg.Browser.Timeout != 20*time.Second || cfg.Browser.ViewportWidth != 1200 {
		t.Errorf("browser = %+v", cfg.Browser)
	}
	if cfg.Search.Provider != "auto" {
		t.Errorf("provider = %q", cfg.Search.Provider)
	}
}

func TestLoad_File(t *testing.T) {
	// WHAT: Explicit values win; everything else still defaults.
	path := filepath.Join(t.TempDir(), "termweb.yaml")
	doc := `
listen:
  port: 4000
terminal:
  width: 132
  filter_icon_links: false
browser:
  headful: true
  timeout: 5s
search:
  provider: cse
  api_key: k
  engine_id: x
serve:
  dir: /srv/files
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen.Addr() != "127.0.0.1:4000" {
		t.Errorf("addr = %q", cfg.Listen.Addr())
	}
	if cfg.Terminal.Width != 132 {
		t.Errorf("width = %d", cfg.Terminal.Width)
	}
	if cfg.Terminal.FilterIconLinks == nil || *cfg.Terminal.FilterIconLinks {
		t.Error("explicit false should survive defaulting")
	}
	if !cfg.Browser.Headful || cfg.Browser.Timeout != 5*time.Second {
		t.Errorf("browser = %+v", cfg.Browser)
	}
	if cfg.Search.APIKey != "k" || cfg.Search.EngineID != "x" {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Serve.Dir != "/srv/files" {
		t.Errorf("serve dir = %q", cfg.Serve.Dir)
	}
	// Untouched fields still default.
	if cfg.Terminal.ASCIIImageWidth != 68 || cfg.Browser.MaxNodes != 800 {
		t.Error("defaults missing for unset fields")
	}
}

func TestLoad_EnvCredentials(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "envkey")
	t.Setenv("GOOGLE_CSE_ID", "envcx")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.APIKey != "envkey" || cfg.Search.EngineID != "envcx" {
		t.Errorf("search = %+v", cfg.Search)
	}
}

func TestLoad_BadFile(t *testing.T) {
	if _, err := Load("/nonexistent/termweb.yaml"); err == nil {
		t.Error("missing file should error")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("listen: [not a map"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml should error")
	}
}

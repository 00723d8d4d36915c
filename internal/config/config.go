// Package config loads the termweb YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level termweb configuration.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Terminal TerminalConfig `yaml:"terminal"`
	Browser  BrowserConfig  `yaml:"browser"`
	Search   SearchConfig   `yaml:"search"`
	Serve    ServeConfig    `yaml:"serve"`
}

// ListenConfig is the telnet listener address.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr formats the listener address.
func (l ListenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// TerminalConfig is the default rendering profile for new connections.
type TerminalConfig struct {
	Width           int     `yaml:"width"`
	RowAspect       float64 `yaml:"row_aspect"`
	ASCIIImageWidth int     `yaml:"ascii_image_width"`
	AutoImageMax    int     `yaml:"auto_image_max"`
	FilterIconLinks *bool   `yaml:"filter_icon_links"`
}

// BrowserConfig controls the Chrome capturer.
type BrowserConfig struct {
	Remote         string        `yaml:"remote"`
	Headful        bool          `yaml:"headful"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxNodes       int           `yaml:"max_nodes"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	Selectors      string        `yaml:"selectors"`
}

// SearchConfig selects and credentials the search backends. The API key
// and engine ID may also come from GOOGLE_API_KEY / GOOGLE_CSE_ID.
type SearchConfig struct {
	Provider string `yaml:"provider"` // auto | cse | browser
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

// ServeConfig is the default directory for the serve command.
type ServeConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a YAML configuration file. An empty path yields defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen.Host == "" {
		c.Listen.Host = "127.0.0.1"
	}
	if c.Listen.Port <= 0 {
		c.Listen.Port = 2323
	}
	if c.Terminal.Width <= 0 {
		c.Terminal.Width = 110
	}
	if c.Terminal.RowAspect <= 0 {
		c.Terminal.RowAspect = 0.52
	}
	if c.Terminal.ASCIIImageWidth <= 0 {
		c.Terminal.ASCIIImageWidth = 68
	}
	if c.Terminal.AutoImageMax <= 0 {
		c.Terminal.AutoImageMax = 3
	}
	if c.Terminal.FilterIconLinks == nil {
		on := true
		c.Terminal.FilterIconLinks = &on
	}
	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = 20 * time.Second
	}
	if c.Browser.MaxNodes <= 0 {
		c.Browser.MaxNodes = 800
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1200
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 1800
	}
	if c.Search.Provider == "" {
		c.Search.Provider = "auto"
	}
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.Search.EngineID == "" {
		c.Search.EngineID = os.Getenv("GOOGLE_CSE_ID")
	}
}

// Entry point for the termweb telnet browser: Chrome capturer, search
// backends, and the telnet command loop.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/termweb/capture"
	"github.com/hazyhaar/termweb/fetch"
	"github.com/hazyhaar/termweb/internal/config"
	"github.com/hazyhaar/termweb/search"
	"github.com/hazyhaar/termweb/session"
	"github.com/hazyhaar/termweb/telnet"
)

func main() {
	configPath := flag.String("config", "", "path to termweb.yaml")
	addr := flag.String("addr", "", "telnet listen address, overrides config")
	logLevel := flag.String("log-level", "info", "debug | info | warn | error")
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	listenAddr := cfg.Listen.Addr()
	if *addr != "" {
		listenAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capturer := capture.New(capture.Config{
		RemoteURL:      cfg.Browser.Remote,
		Headful:        cfg.Browser.Headful,
		Timeout:        cfg.Browser.Timeout,
		MaxNodes:       cfg.Browser.MaxNodes,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		Selectors:      cfg.Browser.Selectors,
		Logger:         logger,
	})
	if err := capturer.Start(); err != nil {
		// No Chrome is survivable: sessions fall back to plain HTTP.
		logger.Warn("browser unavailable, serving fallback renders", "error", err)
	}
	defer capturer.Close()

	fetcher := fetch.New(fetch.Config{})

	var cseBackend search.Backend
	if cse, err := search.NewCSE(search.CSEConfig{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
	}); err == nil {
		cseBackend = cse
	} else {
		logger.Info("cse search disabled", "reason", err)
	}
	var browserBackend search.Backend
	if capturer.Ready() {
		browserBackend = search.NewBrowser(capturer, logger)
	}

	provider, err := search.ParseProvider(cfg.Search.Provider)
	if err != nil {
		logger.Error("bad search provider", "error", err)
		os.Exit(1)
	}

	defaults := session.DefaultSettings()
	defaults.Width = cfg.Terminal.Width
	defaults.RowAspect = cfg.Terminal.RowAspect
	defaults.ASCIIWidth = cfg.Terminal.ASCIIImageWidth
	defaults.AutoImageMax = cfg.Terminal.AutoImageMax
	defaults.FilterIcons = *cfg.Terminal.FilterIconLinks
	defaults.Provider = provider

	srv := telnet.NewServer(telnet.Config{
		Addr:     listenAddr,
		ServeDir: cfg.Serve.Dir,
		Logger:   logger,
		NewSession: func() *session.Session {
			return session.New(session.Config{
				Snapshotter: capturer,
				Fetcher:     fetcher,
				CSE:         cseBackend,
				Browser:     browserBackend,
				Defaults:    defaults,
				Logger:      logger,
			})
		},
	})

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("telnet server", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

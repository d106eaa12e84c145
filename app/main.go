package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/trifecta/app/aggregator"
	"github.com/lysyi3m/trifecta/app/api"
	"github.com/lysyi3m/trifecta/app/cfg"
	"github.com/lysyi3m/trifecta/app/feed"
	"github.com/lysyi3m/trifecta/app/tasks"
	"github.com/lysyi3m/trifecta/app/topics"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Trifecta server", "version", appCfg.Version)

	configCache := topics.NewConfigCache(appCfg.TopicsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load topic configurations", "topics_dir", appCfg.TopicsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Topic configurations loaded", "count", configCache.GetConfigCount(), "topics_dir", appCfg.TopicsDir)

	for _, key := range appCfg.HomeTopics {
		if _, err := configCache.GetConfig(key); err != nil {
			slog.Warn("Home topic has no configuration, home requests will fail", "topic", key)
		}
	}

	if appCfg.ReloadInterval > 0 {
		scheduler := tasks.NewScheduler(tasks.NewPool(1), appCfg.ReloadInterval, func() []tasks.TaskInterface {
			return []tasks.TaskInterface{tasks.NewReloadTopicsTask(configCache)}
		})
		scheduler.Start()
		defer scheduler.Stop()

		slog.Info("Topic reloading enabled", "interval", appCfg.ReloadInterval)
	}

	fetcher := feed.NewFetcher(nil, appCfg.UserAgent, appCfg.FetchTimeout, appCfg.MaxBodyBytes)

	var parser feed.ParserInterface = feed.NewParser()
	if appCfg.Parser == cfg.ParserGofeed {
		parser = feed.NewGofeedParser()
	}

	agg := aggregator.New(fetcher, parser, aggregator.Options{
		ItemsPerPanel: appCfg.ItemsPerPanel,
		PadPanels:     appCfg.PadPanels,
		Workers:       appCfg.FetchConcurrency,
	})

	handler := api.NewHandler(agg, configCache, appCfg.HomeTopics, appCfg.WebDir, appCfg.Version)
	server := api.NewServer(handler)

	// Aggregation waits on feeds for up to FetchTimeout, so the write
	// deadline has to outlast it.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "port", appCfg.Port,
			"home", "/api/v1/home", "topic", "/api/v1/topics/<key>", "health", "/health")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

// setupLogger sends human-readable logs to stdout and errors as JSON to stderr.
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})

	slog.SetDefault(slog.New(slogmulti.Fanout(textHandler, jsonHandler)))
}

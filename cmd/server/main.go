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

	"github.com/baxromumarov/jobfeeds/internal/api"
	"github.com/baxromumarov/jobfeeds/internal/config"
	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/httpx"
	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbStore, err := store.NewStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close()

	if err := dbStore.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sources, err := cfg.EnabledSources()
	if err != nil {
		slog.Error("invalid sources", "error", err)
		os.Exit(1)
	}

	stats := observability.NewStats()
	fetcher := httpx.NewCollyFetcher(httpx.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		Interval:  cfg.Fetch.Interval,
		Burst:     cfg.Fetch.Burst,
		Attempts:  cfg.Fetch.Attempts,
	})
	runner := core.NewRunner(fetcher, sources,
		core.WithWorkers(cfg.Workers),
		core.WithMaxLinks(cfg.MaxLinks),
		core.WithUserAgent(cfg.Fetch.UserAgent),
		core.WithStats(stats),
	)

	// Re-run saved searches and prune old runs
	scheduler := core.NewSchedulerService(runner, dbStore, cfg.WatchQueries(), cfg.WatchInterval, cfg.Retention)
	scheduler.Start(ctx)

	srv := api.NewServer(runner, dbStore, stats,
		api.WithDefaultMinSalary(cfg.MinSalary),
		api.WithSources(runner.Sources()),
	)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server", "port", cfg.Port, "sources", len(sources), "watches", len(cfg.Watches))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

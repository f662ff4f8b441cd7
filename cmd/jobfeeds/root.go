package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/jobfeeds/internal/config"
	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/httpx"
	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

var (
	cfgFile string
	debug   bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jobfeeds",
		Short:         "Aggregate job postings from UK and US job boards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $JOBFEEDS_CONFIG)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newSearchCommand())
	root.AddCommand(newSourcesCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newRunner(cfg *config.Config, sources []scraper.Source, stats *observability.Stats) *core.Runner {
	fetcher := httpx.NewCollyFetcher(httpx.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		Interval:  cfg.Fetch.Interval,
		Burst:     cfg.Fetch.Burst,
		Attempts:  cfg.Fetch.Attempts,
	})
	return core.NewRunner(fetcher, sources,
		core.WithWorkers(cfg.Workers),
		core.WithMaxLinks(cfg.MaxLinks),
		core.WithUserAgent(cfg.Fetch.UserAgent),
		core.WithStats(stats),
	)
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/jobfeeds/internal/config"
	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/export"
	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/store"
)

type searchOptions struct {
	keyword      string
	minSalary    int
	contractOnly bool
	sources      []string
	format       string
	outDir       string
	save         bool
}

func newSearchCommand() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one aggregation across the configured job boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-salary") {
				opts.minSalary = cfg.MinSalary
			}
			if !cmd.Flags().Changed("out") {
				opts.outDir = cfg.ExportDir
			}
			if len(opts.sources) > 0 {
				cfg.Sources = opts.sources
			}
			return runSearch(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.keyword, "keyword", "k", "", "search keyword, e.g. \"data engineer\"")
	cmd.Flags().IntVar(&opts.minSalary, "min-salary", 0, "minimum salary passed to the boards (default from config)")
	cmd.Flags().BoolVar(&opts.contractOnly, "contract-only", false, "keep only contract postings")
	cmd.Flags().StringSliceVar(&opts.sources, "sources", nil, "comma-separated source names (default all)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", export.FormatCSV, "export format: csv, xlsx or none")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "export directory (default from config)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the run in the database")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func runSearch(cmd *cobra.Command, cfg *config.Config, opts searchOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	if strings.TrimSpace(opts.keyword) == "" {
		return errors.New("keyword must not be empty")
	}
	if opts.minSalary < 0 {
		return fmt.Errorf("min-salary must be non-negative, got %d", opts.minSalary)
	}
	sources, err := cfg.EnabledSources()
	if err != nil {
		return err
	}

	stats := observability.NewStats()
	runner := newRunner(cfg, sources, stats)
	q := query.New(opts.keyword, opts.minSalary, opts.contractOnly)

	snap, err := runner.Run(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}
	if err := printSummary(cmd.OutOrStdout(), snap); err != nil {
		return err
	}

	if format != export.FormatNone {
		path, err := export.WriteFile(opts.outDir, format, snap)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}

	if opts.save {
		db, err := store.NewStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		if err := db.SaveRun(cmd.Context(), snap); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		slog.Info("run saved", "run_id", snap.RunID)
	}
	return nil
}

func parseFormat(v string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(v)); f {
	case export.FormatCSV, export.FormatXLSX, export.FormatNone:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want csv, xlsx or none)", v)
	}
}

func printSummary(w io.Writer, snap *core.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tPAGES\tLINKS\tRELEVANT\tFAILED\tSTAGE")
	for _, name := range snap.SourceNames() {
		r := snap.Sources[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", name, r.Pages, r.LinksSeen, r.Relevant, r.Failures.Total(), r.Stage)
	}
	fmt.Fprintf(tw, "total\t\t%d\t%d\t\t\n", snap.TotalLinksSeen, snap.RelevantCount)
	return tw.Flush()
}

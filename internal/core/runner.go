package core

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

const (
	DefaultWorkers   = 4
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/79.0.3945.117 Safari/537.36"
)

// DefaultHeader is the header set sent with every page request.
func DefaultHeader(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml")
	h.Set("Accept-Language", "en-GB,en;q=0.9")
	return h
}

// hostLimiter is implemented by fetchers that accept per-host rate limits.
type hostLimiter interface {
	SetHostLimit(host string, per time.Duration, burst int)
}

type Option func(*Runner)

// WithWorkers bounds concurrent detail fetches per source.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithMaxLinks caps the links extracted per source; 0 means no cap.
func WithMaxLinks(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.maxLinks = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(r *Runner) {
		r.header = DefaultHeader(ua)
	}
}

func WithStats(s *observability.Stats) Option {
	return func(r *Runner) {
		r.stats = s
	}
}

// Runner drives one aggregation run across all configured sources: each
// source counts pages, harvests links and then extracts postings, with the
// sources running concurrently.
type Runner struct {
	fetcher  PageFetcher
	sources  []scraper.Source
	header   http.Header
	workers  int
	maxLinks int
	stats    *observability.Stats
}

func NewRunner(fetcher PageFetcher, sources []scraper.Source, opts ...Option) *Runner {
	r := &Runner{
		fetcher: fetcher,
		sources: sources,
		header:  DefaultHeader(""),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	if hl, ok := fetcher.(hostLimiter); ok {
		for _, src := range sources {
			if src.RequestInterval <= 0 {
				continue
			}
			if u, err := url.Parse(src.BaseURL); err == nil && u.Hostname() != "" {
				hl.SetHostLimit(u.Hostname(), src.RequestInterval, 1)
			}
		}
	}
	return r
}

func (r *Runner) Sources() []scraper.Source {
	return r.sources
}

// Run returns the snapshot once every source has finished. Page and posting
// failures are recorded in the snapshot; only cancellation of ctx fails the run.
func (r *Runner) Run(ctx context.Context, q query.Params) (*Snapshot, error) {
	start := time.Now()
	names := make([]string, 0, len(r.sources))
	for _, src := range r.sources {
		names = append(names, src.Name)
	}
	agg := NewAggregator(q, names)
	harvester := NewHarvester(r.fetcher, r.header, r.stats)

	slog.Info("run start", "query", q.String(), "sources", len(r.sources), "workers", r.workers)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range r.sources {
		g.Go(func() error {
			return r.runSource(gctx, harvester, src, q, agg)
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("run aborted", "query", q.String(), "error", err)
		r.stats.IncError(observability.ClassifyError(err), "run")
		return nil, err
	}

	for _, name := range names {
		agg.Advance(name, StageDone)
	}
	snap := agg.Snapshot()
	r.stats.ObserveRunDuration(time.Since(start).Seconds())
	slog.Info("run done",
		"run_id", snap.RunID,
		"query", q.String(),
		"links_seen", snap.TotalLinksSeen,
		"relevant", snap.RelevantCount,
		"seconds", time.Since(start).Seconds(),
	)
	return snap, nil
}

func (r *Runner) runSource(ctx context.Context, h *Harvester, src scraper.Source, q query.Params, agg *Aggregator) error {
	r.advance(agg, src.Name, StageCountingPages)
	pages, err := h.CountPages(ctx, src, q)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("page count failed", "source", src.Name, "kind", observability.ClassifyError(err), "error", err)
		r.stats.IncError(observability.ClassifyError(err), "count")
		agg.PageFailed(src.Name, src.CountPageURL(q), err)
		pages = 0
	}
	agg.SetPages(src.Name, pages)

	r.advance(agg, src.Name, StageHarvesting)
	links, err := h.Harvest(ctx, src, q, pages, func(page string, err error) {
		r.stats.IncError(observability.ClassifyError(err), "harvest")
		agg.PageFailed(src.Name, page, err)
	})
	if err != nil {
		return err
	}
	if r.maxLinks > 0 && len(links) > r.maxLinks {
		links = links[:r.maxLinks]
	}
	slog.Info("harvest done", "source", src.Name, "pages", pages, "links", len(links))

	r.advance(agg, src.Name, StageExtracting)
	extractor := scraper.WithStructuredData(src.Extractor)
	pool, pctx := errgroup.WithContext(ctx)
	pool.SetLimit(r.workers)
	for _, link := range links {
		if pctx.Err() != nil {
			break
		}
		pool.Go(func() error {
			return r.extractOne(pctx, src.Name, extractor, link, agg)
		})
	}
	if err := pool.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.advance(agg, src.Name, StageAggregated)
	return nil
}

func (r *Runner) extractOne(ctx context.Context, source string, extractor scraper.Extractor, link string, agg *Aggregator) error {
	doc, err := r.fetcher.FetchDocument(ctx, link, r.header)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.linkFailed(agg, source, link, err)
		return nil
	}
	posting, err := extractor.Extract(doc, link)
	if err != nil {
		r.linkFailed(agg, source, link, err)
		return nil
	}
	posting.Source = source
	r.stats.IncPostingsExtracted(source)
	if agg.Add(source, posting) {
		r.stats.IncPostingsRelevant(source)
	}
	return nil
}

func (r *Runner) linkFailed(agg *Aggregator, source, link string, err error) {
	kind := observability.ClassifyError(err)
	slog.Warn("posting failed", "source", source, "url", link, "kind", kind, "error", err)
	r.stats.IncError(kind, "extract")
	agg.LinkFailed(source, link, err)
}

func (r *Runner) advance(agg *Aggregator, source string, stage Stage) {
	agg.Advance(source, stage)
	slog.Info("source stage", "source", source, "stage", stage.String())
}

package core

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/baxromumarov/jobfeeds/internal/dom"
	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

// PageFetcher returns the parsed document at url. Retries and backoff are the
// fetcher's business.
type PageFetcher interface {
	FetchDocument(ctx context.Context, url string, header http.Header) (*dom.Document, error)
}

// Harvester walks a source's listing pages.
type Harvester struct {
	fetcher PageFetcher
	header  http.Header
	stats   *observability.Stats
}

func NewHarvester(fetcher PageFetcher, header http.Header, stats *observability.Stats) *Harvester {
	return &Harvester{fetcher: fetcher, header: header, stats: stats}
}

// CountPages reads the result count from the source's count page and turns it
// into a page count.
func (h *Harvester) CountPages(ctx context.Context, src scraper.Source, q query.Params) (int, error) {
	countURL := src.CountPageURL(q)
	doc, err := h.fetcher.FetchDocument(ctx, countURL, h.header)
	if err != nil {
		return 0, err
	}
	h.stats.IncPagesCrawled(src.Name)
	results, err := src.CountResults(doc, countURL)
	if err != nil {
		return 0, err
	}
	pages := src.PageCount(results)
	slog.Info("page count", "source", src.Name, "results", results, "per_page", src.PerPage, "pages", pages)
	return pages, nil
}

// Harvest fetches listing pages in page order and returns every posting link
// found, duplicates included. A page that fails is passed to onFailure and
// contributes no links. Only a context error stops the walk early.
func (h *Harvester) Harvest(ctx context.Context, src scraper.Source, q query.Params, pages int, onFailure func(page string, err error)) ([]string, error) {
	var links []string
	for i, pageURL := range src.ListingURLs(q, pages) {
		if err := ctx.Err(); err != nil {
			return links, err
		}
		doc, err := h.fetcher.FetchDocument(ctx, pageURL, h.header)
		if err != nil {
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			slog.Warn("listing page failed", "source", src.Name, "page", i+1, "url", pageURL,
				"kind", observability.ClassifyError(err), "error", err)
			if onFailure != nil {
				onFailure(pageURL, err)
			}
			continue
		}
		h.stats.IncPagesCrawled(src.Name)
		found := src.ExtractLinks(doc, pageURL)
		slog.Debug("harvest page", "source", src.Name, "page", i+1, "links", len(found))
		links = append(links, found...)
	}
	return links, nil
}

package core

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/baxromumarov/jobfeeds/internal/dom"
	"github.com/baxromumarov/jobfeeds/internal/httpx"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

// fakeFetcher serves fixed HTML per URL. URLs without a page get an empty
// document; URLs in fail get a 503 FetchError.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	fail     map[string]bool
	requests []string
	headers  []http.Header
	limits   map[string]time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:  map[string]string{},
		fail:   map[string]bool{},
		limits: map[string]time.Duration{},
	}
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, url string, header http.Header) (*dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, url)
	f.headers = append(f.headers, header)
	body, ok := f.pages[url]
	failed := f.fail[url]
	f.mu.Unlock()

	if failed {
		return nil, &httpx.FetchError{URL: url, Status: http.StatusServiceUnavailable}
	}
	if !ok {
		body = "<html><body></body></html>"
	}
	return dom.ParseString(body)
}

func (f *fakeFetcher) SetHostLimit(host string, per time.Duration, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits[host] = per
}

func (f *fakeFetcher) requested(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// testSource is a minimal listing site at base: the count lives in
// <span class="count">, links in <a class="job">, details in <h1>,
// <p class="description"> and <span class="type">.
func testSource(name, base string) scraper.Source {
	return scraper.Source{
		Name:       name,
		BaseURL:    base,
		CountURL:   base + "/count?q={keyword}",
		PageURL:    base + "/list?q={keyword}&page={page}",
		PerPage:    20,
		Pagination: scraper.ByPageIndex,
		Rounding:   scraper.RoundUp,
		Count:      scraper.CountRule{Selector: dom.ByClass("span", "count")},
		Links:      scraper.LinkRule{Container: dom.ByClass("a", "job")},
		Extractor: scraper.ExtractorFunc(func(doc *dom.Document, link string) (scraper.Posting, error) {
			title := doc.Find(dom.Tag("h1"))
			if title == nil {
				return scraper.Posting{}, &scraper.MalformedDocumentError{Source: name, Link: link, Reason: "no h1"}
			}
			return scraper.Posting{
				Title:       title.Text(),
				Link:        link,
				JobType:     dom.OptionalText(doc.Find(dom.ByClass("span", "type"))),
				Description: doc.Find(dom.ByClass("p", "description")).Text(),
			}, nil
		}),
	}
}

func countPage(n string) string {
	return `<html><body><span class="count">` + n + `</span></body></html>`
}

func listPage(hrefs ...string) string {
	s := "<html><body>"
	for _, h := range hrefs {
		s += `<a class="job" href="` + h + `">job</a>`
	}
	return s + "</body></html>"
}

func detailPage(title, description, jobType string) string {
	s := "<html><body><h1>" + title + "</h1><p class=\"description\">" + description + "</p>"
	if jobType != "" {
		s += `<span class="type">` + jobType + `</span>`
	}
	return s + "</body></html>"
}

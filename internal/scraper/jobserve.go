package scraper

import (
	"time"

	"github.com/baxromumarov/jobfeeds/internal/dom"
)

const (
	jobServeBaseURL = "https://www.jobserve.com"
	// JobServe serves a saved search; the keyword is not part of the URL.
	jobServeListURL = jobServeBaseURL + "/gb/en/JobListingBasic.aspx?shid=70C465132748773534BA"
)

// NewJobServe keeps the legacy page arithmetic: a partial final page is
// rounded to nearest rather than up.
func NewJobServe() Source {
	return Source{
		Name:            JobServe,
		BaseURL:         jobServeBaseURL,
		CountURL:        jobServeListURL,
		PageURL:         jobServeListURL + "&page={page}",
		PerPage:         20,
		Pagination:      ByPageIndex,
		Rounding:        RoundNearest,
		Count:           CountRule{Selector: dom.ByClass("span", "resultnumber"), Child: "span"},
		Links:           LinkRule{Container: dom.ByClass("div", "jobListHeaderPanel")},
		Extractor:       jobServeExtractor{},
		RequestInterval: 2 * time.Second,
	}
}

type jobServeExtractor struct{}

func (jobServeExtractor) Extract(doc *dom.Document, link string) (Posting, error) {
	title := doc.Find(dom.ByID("h1", "positiontitle"))
	if title == nil {
		return Posting{}, malformed(JobServe, link, "missing positiontitle")
	}
	return Posting{
		Title:       title.Text(),
		Salary:      dom.OptionalText(doc.Find(dom.ByID("span", "md_rate"))),
		Location:    dom.OptionalText(doc.Find(dom.ByID("span", "md_location"))),
		Link:        link,
		Advertiser:  dom.OptionalText(doc.Find(dom.ByID("div", "recruitername")).Find(dom.Tag("span"))),
		JobType:     dom.OptionalText(doc.Find(dom.ByID("span", "td_job_type"))),
		Description: doc.Find(dom.ByClass("div", "md_skills")).Text(),
	}, nil
}

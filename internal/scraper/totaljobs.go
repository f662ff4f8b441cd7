package scraper

import (
	"github.com/baxromumarov/jobfeeds/internal/dom"
)

// TotalJobs and CWJobs run the same board software and share markup.

const (
	totalJobsBaseURL = "https://www.totaljobs.com"
	cwJobsBaseURL    = "https://www.cwjobs.co.uk"
)

func NewTotalJobs() Source {
	return newBoardSource(TotalJobs, totalJobsBaseURL)
}

func NewCWJobs() Source {
	return newBoardSource(CWJobs, cwJobsBaseURL)
}

func newBoardSource(name, base string) Source {
	countURL := base + "/jobs/{keyword}?postedwithin=3&salary={salary}&salarytypeid=1"
	return Source{
		Name:       name,
		BaseURL:    base,
		CountURL:   countURL,
		PageURL:    countURL + "&page={page}",
		PerPage:    20,
		Pagination: ByPageIndex,
		Rounding:   RoundUp,
		Count:      CountRule{Selector: dom.ByClass("div", "page-title"), Child: "span"},
		Links:      LinkRule{Container: dom.ByClass("div", "job-title")},
		Extractor:  boardExtractor{name: name},
	}
}

type boardExtractor struct {
	name string
}

func (e boardExtractor) Extract(doc *dom.Document, link string) (Posting, error) {
	title := doc.Find(dom.Tag("h1"))
	if title == nil {
		return Posting{}, malformed(e.name, link, "missing <h1> title")
	}

	location := dom.FirstPresent(
		dom.OptionalText(doc.Find(dom.ByClass("li", "location icon")).Find(dom.Tag("div"))),
		dom.OptionalText(doc.Find(dom.ByClass("div", "col-xs-12 col-sm-7 travelTime-locationText")).Find(dom.Tag("ul"))),
	)

	return Posting{
		Title:       title.Text(),
		Salary:      dom.OptionalText(doc.Find(dom.ByClass("li", "salary icon"))),
		Location:    location,
		Link:        link,
		Advertiser:  dom.OptionalText(doc.Find(dom.ByID("a", "companyJobsLink"))),
		JobType:     dom.OptionalText(doc.Find(dom.ByClass("li", "job-type icon")).Find(dom.Tag("div"))),
		Description: doc.Find(dom.ByClass("div", "job-description")).Text(),
	}, nil
}

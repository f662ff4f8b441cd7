package scraper

import (
	"github.com/baxromumarov/jobfeeds/internal/dom"
)

const reedBaseURL = "https://www.reed.co.uk"

func NewReed() Source {
	return Source{
		Name:       Reed,
		BaseURL:    reedBaseURL,
		CountURL:   reedBaseURL + "/jobs/{keyword}-jobs?salaryfrom={salary}&datecreatedoffset=LastThreeDays",
		PageURL:    reedBaseURL + "/jobs/{keyword}-jobs?pageno={page}&salaryfrom={salary}&datecreatedoffset=LastThreeDays",
		PerPage:    25,
		Pagination: ByPageIndex,
		Rounding:   RoundUp,
		Count:      CountRule{Selector: dom.ByClass("span", "count")},
		Links:      LinkRule{Container: dom.ByClass("h3", "title")},
		Extractor:  reedExtractor{},
	}
}

type reedExtractor struct{}

func (reedExtractor) Extract(doc *dom.Document, link string) (Posting, error) {
	title := doc.Find(dom.Tag("h1"))
	if title == nil {
		return Posting{}, malformed(Reed, link, "missing <h1> title")
	}
	return Posting{
		Title:       title.Text(),
		Salary:      dom.OptionalText(doc.Find(dom.ByAttr("span", "data-qa", "salaryLbl"))),
		Location:    dom.OptionalText(doc.Find(dom.ByAttr("span", "itemprop", "addressLocality"))),
		Link:        link,
		Advertiser:  dom.OptionalText(doc.Find(dom.ByAttr("span", "itemprop", "name"))),
		JobType:     dom.OptionalText(doc.Find(dom.ByAttr("span", "itemprop", "employmentType"))),
		Description: doc.Find(dom.ByAttr("span", "itemprop", "description")).Text(),
	}, nil
}

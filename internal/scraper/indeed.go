package scraper

import (
	"strings"

	"github.com/baxromumarov/jobfeeds/internal/dom"
)

const (
	indeedUKBaseURL = "https://www.indeed.co.uk"
	indeedUSBaseURL = "https://www.indeed.com"
)

func NewIndeedUK() Source {
	// %C2%A3 is "£"
	return newIndeedSource(IndeedUK, indeedUKBaseURL, "%C2%A3", "£")
}

func NewIndeedUS() Source {
	return newIndeedSource(IndeedUS, indeedUSBaseURL, "%24", "$")
}

func newIndeedSource(name, base, encodedCurrency, currency string) Source {
	countURL := base + "/jobs?q={keyword}+" + encodedCurrency + "{salary}&sort=date&limit=50&fromage=3&radius=25"
	return Source{
		Name:       name,
		BaseURL:    base,
		CountURL:   countURL,
		PageURL:    countURL + "&start={page}",
		PerPage:    50,
		Pagination: ByOffset,
		Rounding:   RoundUp,
		// "Page 1 of 1,234 jobs"
		Count:     CountRule{Selector: dom.ByID("", "searchCountPages"), Token: SecondLastWord},
		Links:     LinkRule{Container: dom.ByClass("div", "title")},
		Extractor: indeedExtractor{name: name, currency: currency},
	}
}

// indeedExtractor reads location, job type and salary from one row of
// unlabelled metadata spans. The first span is the location; of the rest,
// a span carrying the currency symbol is the salary and any other is the type.
type indeedExtractor struct {
	name     string
	currency string
}

func (e indeedExtractor) Extract(doc *dom.Document, link string) (Posting, error) {
	title := doc.Find(dom.ByClass("div", "jobsearch-JobInfoHeader-title-container"))
	if title == nil {
		return Posting{}, malformed(e.name, link, "missing title container")
	}

	p := Posting{
		Title:       title.Text(),
		Link:        link,
		Advertiser:  dom.OptionalText(doc.Find(dom.ByClass("div", "icl-u-lg-mr--sm icl-u-xs-mr--xs"))),
		Description: doc.Find(dom.ByID("div", "jobDescriptionText")).Text(),
	}

	meta := doc.FindAll(dom.ByClass("span", "jobsearch-JobMetadataHeader-iconLabel"))
	for i, span := range meta {
		text := span.Text()
		switch {
		case i == 0:
			p.Location = &text
		case strings.Contains(text, e.currency):
			if p.Salary == nil {
				p.Salary = &text
			}
		default:
			if p.JobType == nil {
				p.JobType = &text
			}
		}
	}
	return p, nil
}

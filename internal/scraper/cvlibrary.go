package scraper

import (
	"strings"

	"github.com/baxromumarov/jobfeeds/internal/dom"
)

const cvLibraryBaseURL = "https://www.cv-library.co.uk"

func NewCVLibrary() Source {
	countURL := cvLibraryBaseURL + "/search-jobs?category=&distance=15&geo=&industry=&order=&perpage=25&posted=3" +
		"&q={keyword}&salarymax=&salarymin={salary}&salarytype=annum&tempperm="
	return Source{
		Name:       CVLibrary,
		BaseURL:    cvLibraryBaseURL,
		CountURL:   countURL,
		PageURL:    countURL + "&offset={page}",
		PerPage:    25,
		Pagination: ByOffset,
		Rounding:   RoundUp,
		Count:      CountRule{Selector: dom.ByClass("p", "search-header__results"), Token: SecondLastLine},
		Links: LinkRule{
			Container: dom.ByClass("", "results__item"),
			Exclude:   []string{"trainee"},
		},
		Extractor: cvLibraryExtractor{},
	}
}

// cvLibraryExtractor reads location, salary and advertiser from the lines of
// the header <dd> list: location first, advertiser last, and the second line
// is the salary only when it carries "£".
type cvLibraryExtractor struct{}

func (cvLibraryExtractor) Extract(doc *dom.Document, link string) (Posting, error) {
	title := doc.Find(dom.ByClass("h1", "job__title"))
	if title == nil {
		return Posting{}, malformed(CVLibrary, link, "missing job__title")
	}
	titleText := title.Text()
	if lines := title.Lines(); len(lines) > 0 {
		titleText = lines[0]
	}

	p := Posting{
		Title:       titleText,
		Link:        link,
		JobType:     dom.OptionalText(doc.Find(dom.ByClass("dl", "job__details")).Find(dom.Tag("dd"))),
		Description: doc.Find(dom.ByClass("div", "job__description")).Text(),
	}

	var header []string
	for _, dd := range doc.Find(dom.ByClass("div", "job__header-info")).FindAll(dom.Tag("dd")) {
		header = append(header, dd.Lines()...)
	}
	if len(header) > 0 {
		p.Location = &header[0]
	}
	if len(header) > 1 {
		if strings.Contains(header[1], "£") {
			p.Salary = &header[1]
		}
		p.Advertiser = &header[len(header)-1]
	}
	return p, nil
}

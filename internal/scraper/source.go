package scraper

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baxromumarov/jobfeeds/internal/dom"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/urlutil"
)

// Pagination is how a source numbers its listing pages.
type Pagination int

const (
	// ByPageIndex numbers pages 1..N.
	ByPageIndex Pagination = iota
	// ByOffset passes the result offset: 0, per, 2*per, ...
	ByOffset
)

func (p Pagination) String() string {
	if p == ByOffset {
		return "offset"
	}
	return "page"
}

// Rounding selects how a partial final page is counted.
type Rounding int

const (
	// RoundUp counts a partial final page as one more page.
	RoundUp Rounding = iota
	// RoundNearest rounds half to even; kept for the legacy JobServe rule.
	RoundNearest
)

func (r Rounding) String() string {
	if r == RoundNearest {
		return "nearest"
	}
	return "ceil"
}

// Token picks the part of the count element holding the number.
type Token int

const (
	WholeText Token = iota
	SecondLastWord
	SecondLastLine
)

// CountRule locates the total result count on a listing page.
type CountRule struct {
	Selector dom.Selector
	// Child, when set, is the tag of the descendant holding the number.
	Child string
	Token Token
}

// LinkRule locates posting links on a listing page.
type LinkRule struct {
	Container dom.Selector
	// Exclude drops links whose lowercase href contains any of these.
	Exclude []string
}

// Source describes one listing site. Templates accept {keyword}, {salary}
// and {page}; {page} is a page index or a result offset per Pagination.
type Source struct {
	Name       string
	BaseURL    string
	CountURL   string
	PageURL    string
	PerPage    int
	Pagination Pagination
	Rounding   Rounding
	Count      CountRule
	Links      LinkRule
	Extractor  Extractor
	// RequestInterval, when set, caps the request rate to this source's host.
	RequestInterval time.Duration
}

func (s Source) expand(tmpl string, p query.Params, page int) string {
	r := strings.NewReplacer(
		"{keyword}", p.URLKeyword(),
		"{salary}", strconv.Itoa(p.MinSalary()),
		"{page}", strconv.Itoa(page),
	)
	return r.Replace(tmpl)
}

// CountPageURL is the listing page the result count is read from.
func (s Source) CountPageURL(p query.Params) string {
	return s.expand(s.CountURL, p, 0)
}

// ListingURLs builds the URLs of the first pages listing pages, in page order.
func (s Source) ListingURLs(p query.Params, pages int) []string {
	if pages <= 0 {
		return nil
	}
	urls := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		page := i + 1
		if s.Pagination == ByOffset {
			page = i * s.PerPage
		}
		urls = append(urls, s.expand(s.PageURL, p, page))
	}
	return urls
}

// PageCount converts a result count into the number of listing pages.
func (s Source) PageCount(results int) int {
	return PageCount(results, s.PerPage, s.Rounding)
}

// PageCount returns results itself when it is below one page's worth, the
// rounded-up quotient otherwise (half-to-even rounding for RoundNearest).
func PageCount(results, perPage int, rounding Rounding) int {
	if results <= 0 || perPage <= 0 {
		return 0
	}
	if results < perPage {
		return results
	}
	if rounding == RoundNearest {
		return int(math.RoundToEven(float64(results) / float64(perPage)))
	}
	if results%perPage == 0 {
		return results / perPage
	}
	return results/perPage + 1
}

// CountResults reads the total result count from a listing page.
func (s Source) CountResults(doc *dom.Document, pageURL string) (int, error) {
	node := doc.Find(s.Count.Selector)
	if node == nil {
		return 0, s.countErr(pageURL, "count element %s not found", s.Count.Selector)
	}
	if s.Count.Child != "" {
		node = node.Find(dom.Tag(s.Count.Child))
		if node == nil {
			return 0, s.countErr(pageURL, "count element %s has no <%s>", s.Count.Selector, s.Count.Child)
		}
	}

	var raw string
	switch s.Count.Token {
	case SecondLastWord:
		words := strings.Fields(node.Text())
		if len(words) < 2 {
			return 0, s.countErr(pageURL, "no count token in %q", node.Text())
		}
		raw = words[len(words)-2]
	case SecondLastLine:
		lines := node.Lines()
		if len(lines) < 2 {
			return 0, s.countErr(pageURL, "no count line in %q", node.Text())
		}
		raw = lines[len(lines)-2]
	default:
		raw = node.Text()
	}

	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, s.countErr(pageURL, "invalid count %q", raw)
	}
	return n, nil
}

func (s Source) countErr(pageURL, format string, args ...any) error {
	return &ExtractionError{Source: s.Name, Page: pageURL, Reason: fmt.Sprintf(format, args...)}
}

// ExtractLinks returns the absolute posting links on a listing page in
// listing order. Duplicates are kept.
func (s Source) ExtractLinks(doc *dom.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base, _ = url.Parse(s.BaseURL)
	}

	var links []string
	for _, container := range doc.FindAll(s.Links.Container) {
		href := container.Href()
		if href == "" {
			href = container.Find(dom.Tag("a")).Href()
		}
		link := urlutil.Resolve(base, href)
		if link == "" || s.excluded(link) {
			continue
		}
		links = append(links, link)
	}
	return links
}

func (s Source) excluded(link string) bool {
	lower := strings.ToLower(link)
	for _, ex := range s.Links.Exclude {
		if strings.Contains(lower, ex) {
			return true
		}
	}
	return false
}

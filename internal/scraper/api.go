package scraper

import (
	"github.com/baxromumarov/jobfeeds/internal/dom"
)

// Posting is one job advertisement in the common schema. Nil fields were
// absent from the detail page.
type Posting struct {
	Source      string  `json:"source"`
	Title       string  `json:"title"`
	Salary      *string `json:"salary,omitempty"`
	Location    *string `json:"location,omitempty"`
	Link        string  `json:"link"`
	Advertiser  *string `json:"advertiser,omitempty"`
	JobType     *string `json:"job_type,omitempty"`
	Description string  `json:"description"`
}

// Extractor reads the common schema out of one posting-detail document.
type Extractor interface {
	Extract(doc *dom.Document, link string) (Posting, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(doc *dom.Document, link string) (Posting, error)

func (f ExtractorFunc) Extract(doc *dom.Document, link string) (Posting, error) {
	return f(doc, link)
}

// Value returns the field or "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

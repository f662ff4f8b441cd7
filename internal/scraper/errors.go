package scraper

import "fmt"

// ExtractionError reports a result-count element that is missing or unparsable.
type ExtractionError struct {
	Source string
	Page   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: result count extraction failed on %s: %s", e.Source, e.Page, e.Reason)
}

// MalformedDocumentError reports a detail page without its title container.
type MalformedDocumentError struct {
	Source string
	Link   string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("%s: malformed document %s: %s", e.Source, e.Link, e.Reason)
}

func malformed(source, link, reason string) error {
	return &MalformedDocumentError{Source: source, Link: link, Reason: reason}
}

package observability

import (
	"context"
	"errors"

	"github.com/baxromumarov/jobfeeds/internal/httpx"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

const (
	ErrorFetch      = "fetch"
	ErrorExtraction = "extraction"
	ErrorMalformed  = "malformed"
	ErrorCanceled   = "canceled"
	ErrorStore      = "store"
	ErrorUnknown    = "unknown"
)

// ClassifyError maps an error from the pipeline to one of the Error* kinds.
func ClassifyError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCanceled
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		return ErrorFetch
	}
	var ee *scraper.ExtractionError
	if errors.As(err, &ee) {
		return ErrorExtraction
	}
	var me *scraper.MalformedDocumentError
	if errors.As(err, &me) {
		return ErrorMalformed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorFetch
	}
	return ErrorUnknown
}

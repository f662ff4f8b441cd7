package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

const contractMarker = "contract"

// IsRelevant reports whether the title or description contains the query
// phrase and, for contract-only queries, whether the job type says "contract".
func IsRelevant(p scraper.Posting, q query.Params) bool {
	lower := cases.Lower(language.Und)
	phrase := q.MatchString()
	if !strings.Contains(lower.String(p.Title), phrase) &&
		!strings.Contains(lower.String(p.Description), phrase) {
		return false
	}
	if !q.ContractOnly() {
		return true
	}
	return strings.Contains(lower.String(scraper.Value(p.JobType)), contractMarker)
}

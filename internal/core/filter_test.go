package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

func strPtr(s string) *string { return &s }

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name    string
		posting scraper.Posting
		query   query.Params
		want    bool
	}{
		{
			name:    "title match",
			posting: scraper.Posting{Title: "Data Engineer - London"},
			query:   query.New("data engineer", 0, false),
			want:    true,
		},
		{
			name:    "description match",
			posting: scraper.Posting{Title: "Engineer", Description: "Our DATA ENGINEER team"},
			query:   query.New("Data Engineer", 0, false),
			want:    true,
		},
		{
			name:    "no match",
			posting: scraper.Posting{Title: "Sales Executive", Description: "Targets and commission"},
			query:   query.New("data engineer", 0, false),
			want:    false,
		},
		{
			name:    "words apart do not match the phrase",
			posting: scraper.Posting{Title: "Data Analyst", Description: "Engineer mindset"},
			query:   query.New("data engineer", 0, false),
			want:    false,
		},
		{
			name:    "contract only excludes permanent",
			posting: scraper.Posting{Title: "Python Developer", JobType: strPtr("Permanent")},
			query:   query.New("python", 0, true),
			want:    false,
		},
		{
			name:    "contract only includes contract",
			posting: scraper.Posting{Title: "Python Developer", JobType: strPtr("Contract - 6 months")},
			query:   query.New("python", 0, true),
			want:    true,
		},
		{
			name:    "contract only without type",
			posting: scraper.Posting{Title: "Python Developer"},
			query:   query.New("python", 0, true),
			want:    false,
		},
		{
			name:    "contract type without keyword",
			posting: scraper.Posting{Title: "Java Developer", JobType: strPtr("Contract")},
			query:   query.New("python", 0, true),
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelevant(tt.posting, tt.query))
		})
	}
}

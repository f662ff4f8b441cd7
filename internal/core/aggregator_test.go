package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/jobfeeds/internal/httpx"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

func TestAggregatorFirstWriterWins(t *testing.T) {
	agg := NewAggregator(query.New("python", 0, false), []string{"a", "b"})

	assert.True(t, agg.Add("a", scraper.Posting{Title: "Python Dev", Link: "https://x.test/job/1", Description: "first"}))
	assert.False(t, agg.Add("b", scraper.Posting{Title: "Python Dev", Link: "https://X.test/job/1#apply", Description: "second"}))
	assert.False(t, agg.Add("b", scraper.Posting{Title: "Go Dev", Link: "https://x.test/job/2"}))

	snap := agg.Snapshot()
	require.Len(t, snap.Postings, 1)
	assert.Equal(t, "first", snap.Postings[0].Description)
	assert.Equal(t, 1, snap.RelevantCount)
	assert.Equal(t, 3, snap.TotalLinksSeen)
	assert.Equal(t, SourceReport{LinksSeen: 1, Relevant: 1, Stage: "init"}, snap.Sources["a"])
	assert.Equal(t, SourceReport{LinksSeen: 2, Relevant: 0, Stage: "init"}, snap.Sources["b"])
}

func TestAggregatorConcurrentAdds(t *testing.T) {
	agg := NewAggregator(query.New("python", 0, false), []string{"a", "b", "c", "d"})
	sources := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for _, src := range sources {
		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				agg.Add(src, scraper.Posting{
					Title: "Python Developer",
					Link:  fmt.Sprintf("https://x.test/job/%d", i%50),
				})
			}()
		}
	}
	wg.Wait()

	snap := agg.Snapshot()
	assert.Len(t, snap.Postings, 50)
	assert.Equal(t, 50, snap.RelevantCount)
	assert.Equal(t, 800, snap.TotalLinksSeen)

	relevant := 0
	seen := map[string]bool{}
	for _, name := range snap.SourceNames() {
		report := snap.Sources[name]
		assert.Equal(t, 200, report.LinksSeen)
		relevant += report.Relevant
	}
	for _, p := range snap.Postings {
		assert.False(t, seen[p.Link], "duplicate %s", p.Link)
		seen[p.Link] = true
	}
	assert.Equal(t, 50, relevant)
}

func TestAggregatorFailures(t *testing.T) {
	agg := NewAggregator(query.New("python", 0, false), []string{"a"})

	agg.PageFailed("a", "https://x.test/count", &scraper.ExtractionError{Source: "a", Reason: "missing"})
	agg.LinkFailed("a", "https://x.test/job/1", &httpx.FetchError{URL: "https://x.test/job/1", Status: 500})
	agg.LinkFailed("a", "https://x.test/job/2", &scraper.MalformedDocumentError{Source: "a"})
	agg.LinkFailed("a", "https://x.test/job/3", errors.New("boom"))

	snap := agg.Snapshot()
	report := snap.Sources["a"]
	assert.Equal(t, FailureCounts{Fetch: 1, Extraction: 1, Malformed: 1, Other: 1}, report.Failures)
	assert.Equal(t, 4, report.Failures.Total())
	assert.Equal(t, 3, report.LinksSeen)
	assert.Equal(t, 3, snap.TotalLinksSeen)
	require.Len(t, snap.Failures, 4)
	assert.Equal(t, "extraction", snap.Failures[0].Kind)
}

func TestAggregatorCapsFailureSamples(t *testing.T) {
	agg := NewAggregator(query.New("python", 0, false), nil)
	for i := 0; i < maxFailureSamples+20; i++ {
		agg.LinkFailed("a", fmt.Sprintf("https://x.test/%d", i), errors.New("boom"))
	}
	snap := agg.Snapshot()
	assert.Len(t, snap.Failures, maxFailureSamples)
	assert.Equal(t, maxFailureSamples+20, snap.Sources["a"].Failures.Other)
}

func TestAggregatorStagesOnlyAdvance(t *testing.T) {
	agg := NewAggregator(query.New("python", 0, false), []string{"a"})
	assert.Equal(t, StageInit, agg.Stage("a"))

	agg.Advance("a", StageHarvesting)
	agg.Advance("a", StageCountingPages)
	assert.Equal(t, StageHarvesting, agg.Stage("a"))

	agg.SetPages("a", 7)
	snap := agg.Snapshot()
	assert.Equal(t, "harvesting", snap.Sources["a"].Stage)
	assert.Equal(t, 7, snap.Sources["a"].Pages)
	assert.Equal(t, "unknown", Stage(99).String())
}

func TestSnapshotIsolation(t *testing.T) {
	agg := NewAggregator(query.New("python", 0, false), []string{"a"})
	agg.Add("a", scraper.Posting{Title: "Python", Link: "https://x.test/1"})
	snap := agg.Snapshot()

	agg.Add("a", scraper.Posting{Title: "Python", Link: "https://x.test/2"})
	assert.Len(t, snap.Postings, 1)
	assert.Equal(t, 1, snap.Sources["a"].LinksSeen)
}

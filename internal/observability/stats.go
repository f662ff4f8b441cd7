package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	Runs              uint64            `json:"runs"`
	PagesCrawled      uint64            `json:"pages_crawled"`
	PostingsExtracted uint64            `json:"postings_extracted"`
	PostingsRelevant  uint64            `json:"postings_relevant"`
	ErrorsTotal       uint64            `json:"errors_total"`
	RunSecondsAvg     float64           `json:"run_seconds_avg"`
	PagesBySource     map[string]uint64 `json:"pages_by_source,omitempty"`
	ExtractedBySource map[string]uint64 `json:"extracted_by_source,omitempty"`
	RelevantBySource  map[string]uint64 `json:"relevant_by_source,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

// Stats holds process-lifetime counters across runs. The zero value is ready
// to use; a nil *Stats discards every observation.
type Stats struct {
	pagesCrawled      uint64
	postingsExtracted uint64
	postingsRelevant  uint64
	errorsTotal       uint64

	runCount uint64
	runNanos uint64

	mu                sync.Mutex
	pagesBySource     map[string]uint64
	extractedBySource map[string]uint64
	relevantBySource  map[string]uint64
	errorsByType      map[string]uint64
	errorsByComponent map[string]uint64
}

func NewStats() *Stats {
	return &Stats{}
}

// bump increments (*m)[key], allocating the map on first use. Callers hold mu.
func bump(m *map[string]uint64, key string) {
	if *m == nil {
		*m = map[string]uint64{}
	}
	(*m)[key]++
}

func sourceKey(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}

func (s *Stats) IncPagesCrawled(source string) {
	if s == nil {
		return
	}
	atomic.AddUint64(&s.pagesCrawled, 1)
	s.mu.Lock()
	bump(&s.pagesBySource, sourceKey(source))
	s.mu.Unlock()
}

func (s *Stats) IncPostingsExtracted(source string) {
	if s == nil {
		return
	}
	atomic.AddUint64(&s.postingsExtracted, 1)
	s.mu.Lock()
	bump(&s.extractedBySource, sourceKey(source))
	s.mu.Unlock()
}

func (s *Stats) IncPostingsRelevant(source string) {
	if s == nil {
		return
	}
	atomic.AddUint64(&s.postingsRelevant, 1)
	s.mu.Lock()
	bump(&s.relevantBySource, sourceKey(source))
	s.mu.Unlock()
}

func (s *Stats) ObserveRunDuration(seconds float64) {
	if s == nil || seconds <= 0 {
		return
	}
	atomic.AddUint64(&s.runCount, 1)
	atomic.AddUint64(&s.runNanos, uint64(seconds*1e9))
}

func (s *Stats) IncError(errType, component string) {
	if s == nil {
		return
	}
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&s.errorsTotal, 1)
	s.mu.Lock()
	bump(&s.errorsByType, errType)
	bump(&s.errorsByComponent, component)
	s.mu.Unlock()
}

func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	s.mu.Lock()
	pagesCopy := copyMap(s.pagesBySource)
	extractedCopy := copyMap(s.extractedBySource)
	relevantCopy := copyMap(s.relevantBySource)
	errorsTypeCopy := copyMap(s.errorsByType)
	errorsComponentCopy := copyMap(s.errorsByComponent)
	s.mu.Unlock()

	count := atomic.LoadUint64(&s.runCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&s.runNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		Runs:              count,
		PagesCrawled:      atomic.LoadUint64(&s.pagesCrawled),
		PostingsExtracted: atomic.LoadUint64(&s.postingsExtracted),
		PostingsRelevant:  atomic.LoadUint64(&s.postingsRelevant),
		ErrorsTotal:       atomic.LoadUint64(&s.errorsTotal),
		RunSecondsAvg:     avg,
		PagesBySource:     pagesCopy,
		ExtractedBySource: extractedCopy,
		RelevantBySource:  relevantCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

package core

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
	"github.com/baxromumarov/jobfeeds/internal/urlutil"
)

const maxFailureSamples = 100

// Stage is a source's position in the run pipeline.
type Stage int

const (
	StageInit Stage = iota
	StageCountingPages
	StageHarvesting
	StageExtracting
	StageAggregated
	StageDone
)

var stageNames = [...]string{"init", "counting_pages", "harvesting", "extracting", "aggregated", "done"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

type FailureCounts struct {
	Fetch      int `json:"fetch"`
	Extraction int `json:"extraction"`
	Malformed  int `json:"malformed"`
	Other      int `json:"other"`
}

func (c FailureCounts) Total() int {
	return c.Fetch + c.Extraction + c.Malformed + c.Other
}

func (c *FailureCounts) add(kind string) {
	switch kind {
	case observability.ErrorFetch:
		c.Fetch++
	case observability.ErrorExtraction:
		c.Extraction++
	case observability.ErrorMalformed:
		c.Malformed++
	default:
		c.Other++
	}
}

type SourceReport struct {
	Pages     int           `json:"pages"`
	LinksSeen int           `json:"links_seen"`
	Relevant  int           `json:"relevant"`
	Failures  FailureCounts `json:"failures"`
	Stage     string        `json:"stage"`
}

type Failure struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Snapshot is the immutable result of one run.
type Snapshot struct {
	RunID          uuid.UUID               `json:"run_id"`
	Keyword        string                  `json:"keyword"`
	Label          string                  `json:"label"`
	MinSalary      int                     `json:"min_salary"`
	ContractOnly   bool                    `json:"contract_only"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     time.Time               `json:"finished_at"`
	Postings       []scraper.Posting       `json:"postings"`
	TotalLinksSeen int                     `json:"total_links_seen"`
	RelevantCount  int                     `json:"relevant_count"`
	Sources        map[string]SourceReport `json:"sources"`
	Failures       []Failure               `json:"failures,omitempty"`
}

// SourceNames returns the report keys sorted.
func (s *Snapshot) SourceNames() []string {
	names := make([]string, 0, len(s.Sources))
	for name := range s.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregator collects postings from concurrent extraction workers. Relevant
// postings are kept once per canonical link, first writer wins. Counters only
// grow.
type Aggregator struct {
	query     query.Params
	startedAt time.Time

	mu       sync.Mutex
	index    map[string]struct{}
	postings []scraper.Posting
	total    int
	relevant int
	sources  map[string]*sourceState
	failures []Failure
}

type sourceState struct {
	report SourceReport
	stage  Stage
}

func NewAggregator(q query.Params, sources []string) *Aggregator {
	a := &Aggregator{
		query:     q,
		startedAt: time.Now().UTC(),
		index:     make(map[string]struct{}),
		sources:   make(map[string]*sourceState, len(sources)),
	}
	for _, name := range sources {
		a.sources[name] = &sourceState{}
	}
	return a
}

// Add records one extracted posting and reports whether it was kept.
func (a *Aggregator) Add(source string, p scraper.Posting) bool {
	relevant := IsRelevant(p, a.query)
	key := urlutil.Key(p.Link)

	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.sourceLocked(source)
	st.report.LinksSeen++
	a.total++
	if !relevant {
		return false
	}
	if _, dup := a.index[key]; dup {
		return false
	}
	a.index[key] = struct{}{}
	a.postings = append(a.postings, p)
	st.report.Relevant++
	a.relevant++
	return true
}

// LinkFailed records a detail link that could not be fetched or extracted.
// The link still counts as seen.
func (a *Aggregator) LinkFailed(source, link string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.sourceLocked(source)
	st.report.LinksSeen++
	a.total++
	a.recordLocked(st, source, link, err)
}

// PageFailed records a count or listing page that contributed nothing.
func (a *Aggregator) PageFailed(source, page string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recordLocked(a.sourceLocked(source), source, page, err)
}

func (a *Aggregator) SetPages(source string, pages int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sourceLocked(source).report.Pages = pages
}

// Advance moves a source forward to stage. Stages never move backwards.
func (a *Aggregator) Advance(source string, stage Stage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.sourceLocked(source)
	if stage > st.stage {
		st.stage = stage
	}
}

func (a *Aggregator) Stage(source string) Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	if st, ok := a.sources[source]; ok {
		return st.stage
	}
	return StageInit
}

// Snapshot copies the current state into a Snapshot with a fresh run ID.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := &Snapshot{
		RunID:          uuid.New(),
		Keyword:        a.query.Keyword(),
		Label:          a.query.Label(),
		MinSalary:      a.query.MinSalary(),
		ContractOnly:   a.query.ContractOnly(),
		StartedAt:      a.startedAt,
		FinishedAt:     time.Now().UTC(),
		Postings:       append([]scraper.Posting(nil), a.postings...),
		TotalLinksSeen: a.total,
		RelevantCount:  a.relevant,
		Sources:        make(map[string]SourceReport, len(a.sources)),
		Failures:       append([]Failure(nil), a.failures...),
	}
	for name, st := range a.sources {
		report := st.report
		report.Stage = st.stage.String()
		snap.Sources[name] = report
	}
	return snap
}

func (a *Aggregator) sourceLocked(source string) *sourceState {
	st, ok := a.sources[source]
	if !ok {
		st = &sourceState{}
		a.sources[source] = st
	}
	return st
}

func (a *Aggregator) recordLocked(st *sourceState, source, target string, err error) {
	kind := observability.ClassifyError(err)
	st.report.Failures.add(kind)
	if len(a.failures) >= maxFailureSamples {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	a.failures = append(a.failures, Failure{Source: source, Kind: kind, URL: target, Message: msg})
}

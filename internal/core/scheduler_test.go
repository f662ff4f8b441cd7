package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/jobfeeds/internal/query"
)

type fakeExecutor struct {
	mu   sync.Mutex
	runs []string
	fail map[string]bool
}

func (e *fakeExecutor) Run(_ context.Context, q query.Params) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs = append(e.runs, q.Keyword())
	if e.fail[q.Keyword()] {
		return nil, errors.New("run failed")
	}
	return NewAggregator(q, nil).Snapshot(), nil
}

type fakeRunStore struct {
	mu        sync.Mutex
	saved     []*Snapshot
	retention []time.Duration
	deleteErr error
}

func (s *fakeRunStore) SaveRun(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snap)
	return nil
}

func (s *fakeRunStore) DeleteOldRuns(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retention = append(s.retention, olderThan)
	return 3, s.deleteErr
}

func TestSchedulerRunWatches(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]bool{"cobol": true}}
	store := &fakeRunStore{}
	watches := []query.Params{
		query.New("python", 50000, false),
		query.New("cobol", 0, false),
		query.New("golang", 0, true),
	}

	s := NewSchedulerService(exec, store, watches, time.Hour, 24*time.Hour)
	s.RunWatches(context.Background())

	assert.Equal(t, []string{"python", "cobol", "golang"}, exec.runs)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "python", store.saved[0].Keyword)
	assert.Equal(t, "golang", store.saved[1].Keyword)
	assert.True(t, store.saved[1].ContractOnly)
}

func TestSchedulerRunWatchesStopsOnCancel(t *testing.T) {
	exec := &fakeExecutor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSchedulerService(exec, &fakeRunStore{}, []query.Params{query.New("python", 0, false)}, time.Hour, 0)
	s.RunWatches(ctx)
	assert.Empty(t, exec.runs)
}

func TestSchedulerCleanup(t *testing.T) {
	store := &fakeRunStore{}
	s := NewSchedulerService(&fakeExecutor{}, store, nil, 0, 30*24*time.Hour)
	s.Cleanup(context.Background())

	store.deleteErr = errors.New("db down")
	s.Cleanup(context.Background())

	assert.Equal(t, []time.Duration{30 * 24 * time.Hour, 30 * 24 * time.Hour}, store.retention)
}

func TestSchedulerStartRunsImmediately(t *testing.T) {
	exec := &fakeExecutor{}
	store := &fakeRunStore{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSchedulerService(exec, store, []query.Params{query.New("python", 0, false)}, time.Hour, 24*time.Hour)
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.saved) == 1 && len(store.retention) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/baxromumarov/jobfeeds/internal/query"
)

// Executor runs one aggregation. *Runner implements it.
type Executor interface {
	Run(ctx context.Context, q query.Params) (*Snapshot, error)
}

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, snap *Snapshot) error
	DeleteOldRuns(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SchedulerService re-runs saved searches on an interval and prunes stored
// runs past the retention period once a day.
type SchedulerService struct {
	executor  Executor
	store     RunStore
	watches   []query.Params
	interval  time.Duration
	retention time.Duration
}

func NewSchedulerService(executor Executor, store RunStore, watches []query.Params, interval, retention time.Duration) *SchedulerService {
	return &SchedulerService{
		executor:  executor,
		store:     store,
		watches:   watches,
		interval:  interval,
		retention: retention,
	}
}

func (s *SchedulerService) Start(ctx context.Context) {
	if len(s.watches) > 0 && s.interval > 0 {
		go s.watchLoop(ctx)
	}
	if s.retention > 0 {
		go s.retentionLoop(ctx)
	}
}

func (s *SchedulerService) watchLoop(ctx context.Context) {
	s.RunWatches(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunWatches(ctx)
		}
	}
}

// RunWatches runs every watch once, in order, and stores each snapshot.
func (s *SchedulerService) RunWatches(ctx context.Context) {
	for _, q := range s.watches {
		if ctx.Err() != nil {
			return
		}
		snap, err := s.executor.Run(ctx, q)
		if err != nil {
			slog.Error("watch run failed", "query", q.String(), "error", err)
			continue
		}
		if err := s.store.SaveRun(ctx, snap); err != nil {
			slog.Error("watch save failed", "query", q.String(), "run_id", snap.RunID, "error", err)
			continue
		}
		slog.Info("watch stored", "query", q.String(), "run_id", snap.RunID, "relevant", snap.RelevantCount)
	}
}

func (s *SchedulerService) retentionLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	s.Cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup(ctx)
		}
	}
}

// Cleanup deletes runs older than the retention period.
func (s *SchedulerService) Cleanup(ctx context.Context) {
	count, err := s.store.DeleteOldRuns(ctx, s.retention)
	if err != nil {
		slog.Error("retention cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("retention cleanup", "deleted_runs", count)
	}
}

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

//go:embed schema.sql
var schemaSQL string

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

// NewFromDB wraps an open handle.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.exec(ctx, schemaSQL)
}

// RunMigrations applies the schema file at schemaPath.
func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return s.exec(context.Background(), string(content))
}

func (s *Store) exec(parent context.Context, schema string) error {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

type Run struct {
	ID             uuid.UUID                    `json:"id"`
	Keyword        string                       `json:"keyword"`
	Label          string                       `json:"label"`
	MinSalary      int                          `json:"min_salary"`
	ContractOnly   bool                         `json:"contract_only"`
	TotalLinksSeen int                          `json:"total_links_seen"`
	RelevantCount  int                          `json:"relevant_count"`
	StartedAt      time.Time                    `json:"started_at"`
	FinishedAt     time.Time                    `json:"finished_at"`
	Sources        map[string]core.SourceReport `json:"sources,omitempty"`
}

// SaveRun stores a snapshot, its per-source breakdown and its postings in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, snap *core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, keyword, label, min_salary, contract_only, total_links_seen, relevant_count, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, snap.RunID, snap.Keyword, snap.Label, snap.MinSalary, snap.ContractOnly,
		snap.TotalLinksSeen, snap.RelevantCount, snap.StartedAt, snap.FinishedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, name := range snap.SourceNames() {
		r := snap.Sources[name]
		if _, err := tx.ExecContext(ctx, `
INSERT INTO run_sources (run_id, source, pages, links_seen, relevant, fetch_failures, extraction_failures, malformed_failures, other_failures, stage)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, snap.RunID, name, r.Pages, r.LinksSeen, r.Relevant,
			r.Failures.Fetch, r.Failures.Extraction, r.Failures.Malformed, r.Failures.Other, r.Stage); err != nil {
			return fmt.Errorf("insert run source %s: %w", name, err)
		}
	}

	for i, p := range snap.Postings {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO postings (run_id, position, source, title, salary, location, link, advertiser, job_type, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id, link) DO NOTHING
`, snap.RunID, i, p.Source, p.Title, p.Salary, p.Location, p.Link, p.Advertiser, p.JobType, p.Description); err != nil {
			return fmt.Errorf("insert posting %s: %w", p.Link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const runColumns = `id, keyword, label, min_salary, contract_only, total_links_seen, relevant_count, started_at, finished_at`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Keyword, &r.Label, &r.MinSalary, &r.ContractOnly,
		&r.TotalLinksSeen, &r.RelevantCount, &r.StartedAt, &r.FinishedAt)
	return r, err
}

// ListRuns returns runs newest first, without per-source breakdown.
func (s *Store) ListRuns(ctx context.Context, limit, offset int) ([]Run, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+runColumns+`
FROM runs
ORDER BY finished_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its per-source breakdown, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `
SELECT `+runColumns+`
FROM runs
WHERE id = $1
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT source, pages, links_seen, relevant, fetch_failures, extraction_failures, malformed_failures, other_failures, stage
FROM run_sources
WHERE run_id = $1
ORDER BY source
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r.Sources = map[string]core.SourceReport{}
	for rows.Next() {
		var (
			name   string
			report core.SourceReport
		)
		if err := rows.Scan(&name, &report.Pages, &report.LinksSeen, &report.Relevant,
			&report.Failures.Fetch, &report.Failures.Extraction, &report.Failures.Malformed, &report.Failures.Other,
			&report.Stage); err != nil {
			return nil, err
		}
		r.Sources[name] = report
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRunPostings returns a run's postings in insertion order.
func (s *Store) GetRunPostings(ctx context.Context, id uuid.UUID, limit, offset int) ([]scraper.Posting, error) {
	limit = clampLimit(limit, 50, 500)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT source, title, salary, location, link, advertiser, job_type, description
FROM postings
WHERE run_id = $1
ORDER BY position
LIMIT $2 OFFSET $3
`, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := []scraper.Posting{}
	for rows.Next() {
		var p scraper.Posting
		var salary, location, advertiser, jobType sql.NullString
		if err := rows.Scan(&p.Source, &p.Title, &salary, &location, &p.Link, &advertiser, &jobType, &p.Description); err != nil {
			return nil, err
		}
		p.Salary = nullable(salary)
		p.Location = nullable(location)
		p.Advertiser = nullable(advertiser)
		p.JobType = nullable(jobType)
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// DeleteOldRuns removes runs, and by cascade their postings, finished before
// now minus olderThan.
func (s *Store) DeleteOldRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
DELETE FROM runs
WHERE finished_at < $1
`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

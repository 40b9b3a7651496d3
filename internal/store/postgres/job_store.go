package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// JobStore persists enrichment job rows.
//
// Schema:
//
//	CREATE TABLE enrichment_jobs (
//		id UUID PRIMARY KEY,
//		tournament_id TEXT NOT NULL,
//		status TEXT NOT NULL CHECK (status IN ('queued','running','done','error')),
//		attempt_count INT NOT NULL DEFAULT 0,
//		created_at TIMESTAMPTZ NOT NULL,
//		started_at TIMESTAMPTZ,
//		finished_at TIMESTAMPTZ,
//		pages_fetched_count INT NOT NULL DEFAULT 0,
//		last_error TEXT NOT NULL DEFAULT ''
//	);
//	CREATE UNIQUE INDEX enrichment_jobs_active_uq
//		ON enrichment_jobs (tournament_id) WHERE status IN ('queued','running');
//
// The partial unique index backstops the at-most-one-active-job invariant;
// CreateJob also guards it in SQL so the invariant is visible in application
// logic.
type JobStore struct {
	pool dbPool
}

// NewJobStore constructs a JobStore over an existing pool.
func NewJobStore(pool dbPool) (*JobStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &JobStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *JobStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

const createJobSQL = `
INSERT INTO enrichment_jobs (id, tournament_id, status, attempt_count, created_at, pages_fetched_count, last_error)
SELECT $1, $2, 'queued', 0, $3, 0, ''
WHERE NOT EXISTS (
	SELECT 1 FROM enrichment_jobs
	WHERE tournament_id = $2 AND status IN ('queued', 'running')
)`

// CreateJob inserts a queued job unless the tournament already has an active
// one, in which case it returns enrich.ErrDuplicateJob.
func (s *JobStore) CreateJob(ctx context.Context, job enrich.Job) error {
	tag, err := s.pool.Exec(ctx, createJobSQL, job.ID, job.TournamentID, job.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return enrich.ErrDuplicateJob
		}
		return fmt.Errorf("insert job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrich.ErrDuplicateJob
	}
	return nil
}

const listQueuedSQL = `
SELECT id, tournament_id, status, attempt_count, created_at, started_at, finished_at, pages_fetched_count, last_error
FROM enrichment_jobs
WHERE status = 'queued'
ORDER BY created_at ASC
LIMIT $1`

// ListQueued returns up to limit queued jobs, oldest first.
func (s *JobStore) ListQueued(ctx context.Context, limit int) ([]enrich.Job, error) {
	rows, err := s.pool.Query(ctx, listQueuedSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}
	defer rows.Close()

	var jobs []enrich.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan queued jobs: %w", err)
	}
	return jobs, nil
}

const markRunningSQL = `
UPDATE enrichment_jobs
SET status = 'running', attempt_count = attempt_count + 1, started_at = $2, last_error = ''
WHERE id = $1 AND status = 'queued'`

// MarkRunning transitions queued → running.
func (s *JobStore) MarkRunning(ctx context.Context, jobID string, startedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, markRunningSQL, jobID, startedAt)
	if err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrich.ErrNotFound
	}
	return nil
}

const markDoneSQL = `
UPDATE enrichment_jobs
SET status = 'done', finished_at = $2, pages_fetched_count = $3
WHERE id = $1 AND status = 'running'`

// MarkDone transitions running → done.
func (s *JobStore) MarkDone(ctx context.Context, jobID string, finishedAt time.Time, pagesFetched int) error {
	tag, err := s.pool.Exec(ctx, markDoneSQL, jobID, finishedAt, pagesFetched)
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrich.ErrNotFound
	}
	return nil
}

const markErrorSQL = `
UPDATE enrichment_jobs
SET status = 'error', finished_at = $2, last_error = $3
WHERE id = $1 AND status IN ('queued', 'running')`

// MarkError transitions an active job to error.
func (s *JobStore) MarkError(ctx context.Context, jobID string, finishedAt time.Time, errText string) error {
	tag, err := s.pool.Exec(ctx, markErrorSQL, jobID, finishedAt, errText)
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrich.ErrNotFound
	}
	return nil
}

const getJobSQL = `
SELECT id, tournament_id, status, attempt_count, created_at, started_at, finished_at, pages_fetched_count, last_error
FROM enrichment_jobs
WHERE id = $1`

// GetJob fetches a job by id.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (enrich.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx, getJobSQL, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enrich.Job{}, enrich.ErrNotFound
		}
		return enrich.Job{}, err
	}
	return job, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (enrich.Job, error) {
	var job enrich.Job
	err := row.Scan(
		&job.ID,
		&job.TournamentID,
		&job.Status,
		&job.AttemptCount,
		&job.CreatedAt,
		&job.StartedAt,
		&job.FinishedAt,
		&job.PagesFetched,
		&job.LastError,
	)
	if err != nil {
		return enrich.Job{}, fmt.Errorf("scan job: %w", err)
	}
	return job, nil
}

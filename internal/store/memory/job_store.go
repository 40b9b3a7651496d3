// Package memory provides in-memory store implementations for development and
// testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// JobStore keeps job rows in memory. It enforces the at-most-one-active-job
// invariant the same way the Postgres store does, so scheduler tests exercise
// the real idempotency path.
type JobStore struct {
	mu    sync.RWMutex
	jobs  map[string]enrich.Job
	order []string
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]enrich.Job)}
}

// CreateJob stores a queued job, refusing a second active job per tournament.
func (s *JobStore) CreateJob(_ context.Context, job enrich.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	for _, existing := range s.jobs {
		if existing.TournamentID != job.TournamentID {
			continue
		}
		if existing.Status == enrich.JobStatusQueued || existing.Status == enrich.JobStatusRunning {
			return enrich.ErrDuplicateJob
		}
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	return nil
}

// ListQueued returns up to limit queued jobs, oldest first.
func (s *JobStore) ListQueued(_ context.Context, limit int) ([]enrich.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var queued []enrich.Job
	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status == enrich.JobStatusQueued {
			queued = append(queued, job)
		}
	}
	sort.SliceStable(queued, func(i, j int) bool {
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})
	if limit > 0 && len(queued) > limit {
		queued = queued[:limit]
	}
	return queued, nil
}

// MarkRunning transitions queued → running.
func (s *JobStore) MarkRunning(_ context.Context, jobID string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return enrich.ErrNotFound
	}
	if job.Status != enrich.JobStatusQueued {
		return fmt.Errorf("job %s is %s, not queued", jobID, job.Status)
	}
	job.Status = enrich.JobStatusRunning
	job.AttemptCount++
	started := startedAt
	job.StartedAt = &started
	job.LastError = ""
	s.jobs[jobID] = job
	return nil
}

// MarkDone transitions running → done.
func (s *JobStore) MarkDone(_ context.Context, jobID string, finishedAt time.Time, pagesFetched int) error {
	return s.finish(jobID, enrich.JobStatusDone, finishedAt, pagesFetched, "")
}

// MarkError transitions running → error.
func (s *JobStore) MarkError(_ context.Context, jobID string, finishedAt time.Time, errText string) error {
	return s.finish(jobID, enrich.JobStatusError, finishedAt, 0, errText)
}

func (s *JobStore) finish(jobID string, status enrich.JobStatus, finishedAt time.Time, pages int, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return enrich.ErrNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("job %s is already terminal (%s)", jobID, job.Status)
	}
	job.Status = status
	finished := finishedAt
	job.FinishedAt = &finished
	job.PagesFetched = pages
	job.LastError = errText
	s.jobs[jobID] = job
	return nil
}

// GetJob fetches a job by id.
func (s *JobStore) GetJob(_ context.Context, jobID string) (enrich.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return enrich.Job{}, enrich.ErrNotFound
	}
	return job, nil
}

// JobsForTournament returns every job row for a tournament (test helper).
func (s *JobStore) JobsForTournament(tournamentID string) []enrich.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []enrich.Job
	for _, id := range s.order {
		if s.jobs[id].TournamentID == tournamentID {
			out = append(out, s.jobs[id])
		}
	}
	return out
}

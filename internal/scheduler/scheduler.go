// Package scheduler manages the queue of per-tournament enrichment jobs:
// idempotent enqueue, FIFO batch execution, and job state transitions.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/enrich"
	"github.com/refsignal/tourney-enrich/internal/metrics"
)

// Crawler runs one tournament's crawl. Satisfied by *crawl.Orchestrator.
type Crawler interface {
	Crawl(ctx context.Context, tournamentID, seedURL string) (enrich.CrawlSummary, error)
}

// JobOutcome reports one job's result to the caller for observability.
type JobOutcome struct {
	JobID        string           `json:"id"`
	TournamentID string           `json:"tournament_id"`
	Status       enrich.JobStatus `json:"status"`
	Pages        int              `json:"pages"`
	Error        string           `json:"error,omitempty"`
}

// Config controls Scheduler behavior.
type Config struct {
	// Topic is the completion-event topic; empty disables publishing.
	Topic string
}

// Scheduler pulls queued jobs and executes them strictly sequentially so the
// fetcher's per-host politeness spacing holds without cross-job coordination.
type Scheduler struct {
	jobs        enrich.JobStore
	tournaments enrich.TournamentStore
	candidates  enrich.CandidateStore
	crawler     Crawler
	publisher   enrich.Publisher
	clock       enrich.Clock
	ids         enrich.IDGenerator
	cfg         Config
	logger      *zap.Logger
}

// New constructs a Scheduler. The publisher is optional.
func New(
	jobs enrich.JobStore,
	tournaments enrich.TournamentStore,
	candidates enrich.CandidateStore,
	crawler Crawler,
	publisher enrich.Publisher,
	clock enrich.Clock,
	ids enrich.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		jobs:        jobs,
		tournaments: tournaments,
		candidates:  candidates,
		crawler:     crawler,
		publisher:   publisher,
		clock:       clock,
		ids:         ids,
		cfg:         cfg,
		logger:      logger,
	}
}

// Enqueue inserts one queued job per tournament id and returns how many were
// inserted. A tournament that already has a queued or running job is silently
// skipped; all other insert errors propagate.
func (s *Scheduler) Enqueue(ctx context.Context, tournamentIDs []string) (int, error) {
	inserted := 0
	for _, tid := range tournamentIDs {
		id, err := s.ids.NewID()
		if err != nil {
			return inserted, fmt.Errorf("generate job id: %w", err)
		}
		job := enrich.Job{
			ID:           id,
			TournamentID: tid,
			Status:       enrich.JobStatusQueued,
			CreatedAt:    s.clock.Now(),
		}
		if err := s.jobs.CreateJob(ctx, job); err != nil {
			if errors.Is(err, enrich.ErrDuplicateJob) {
				s.logger.Debug("enqueue skipped, active job exists", zap.String("tournament_id", tid))
				continue
			}
			return inserted, fmt.Errorf("create job for %s: %w", tid, err)
		}
		inserted++
	}
	return inserted, nil
}

// RunQueued executes up to limit queued jobs, oldest first. Each job's outcome
// is independent: one failure never aborts the rest of the batch.
func (s *Scheduler) RunQueued(ctx context.Context, limit int) ([]JobOutcome, error) {
	queued, err := s.jobs.ListQueued(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}

	outcomes := make([]JobOutcome, 0, len(queued))
	for _, job := range queued {
		outcomes = append(outcomes, s.runOne(ctx, job))
	}
	return outcomes, nil
}

func (s *Scheduler) runOne(ctx context.Context, job enrich.Job) (outcome JobOutcome) {
	outcome = JobOutcome{JobID: job.ID, TournamentID: job.TournamentID}

	// A panic in extraction or a store must not take down the batch.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				zap.String("job_id", job.ID),
				zap.Any("panic", r),
			)
			outcome = s.failJob(ctx, job, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.jobs.MarkRunning(ctx, job.ID, s.clock.Now()); err != nil {
		s.logger.Error("mark running failed", zap.String("job_id", job.ID), zap.Error(err))
		outcome.Status = enrich.JobStatusError
		outcome.Error = err.Error()
		return outcome
	}

	summary, err := s.executeJob(ctx, job)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	now := s.clock.Now()
	if err := s.jobs.MarkDone(ctx, job.ID, now, summary.PagesFetched); err != nil {
		s.logger.Error("mark done failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	metrics.ObserveJob(string(enrich.JobStatusDone))
	s.publishOutcome(ctx, job, enrich.JobStatusDone, summary, "")

	outcome.Status = enrich.JobStatusDone
	outcome.Pages = summary.PagesFetched
	return outcome
}

func (s *Scheduler) executeJob(ctx context.Context, job enrich.Job) (enrich.CrawlSummary, error) {
	t, err := s.tournaments.GetTournament(ctx, job.TournamentID)
	if err != nil {
		return enrich.CrawlSummary{}, fmt.Errorf("load tournament: %w", err)
	}

	summary, err := s.crawler.Crawl(ctx, job.TournamentID, t.SourceURL)
	if err != nil {
		return enrich.CrawlSummary{}, err
	}

	if err := s.flushCandidates(ctx, summary); err != nil {
		return enrich.CrawlSummary{}, err
	}
	return summary, nil
}

// flushCandidates stages the crawl output as review-pending rows. Candidates
// are independent facts, so no multi-row transactional guarantee is assumed.
func (s *Scheduler) flushCandidates(ctx context.Context, summary enrich.CrawlSummary) error {
	if err := s.candidates.InsertContacts(ctx, summary.Contacts); err != nil {
		return fmt.Errorf("insert contacts: %w", err)
	}
	if err := s.candidates.InsertVenues(ctx, summary.Venues); err != nil {
		return fmt.Errorf("insert venues: %w", err)
	}
	if err := s.candidates.InsertComps(ctx, summary.Comps); err != nil {
		return fmt.Errorf("insert comps: %w", err)
	}
	if err := s.candidates.InsertDates(ctx, summary.Dates); err != nil {
		return fmt.Errorf("insert dates: %w", err)
	}
	if err := s.candidates.InsertAttributes(ctx, summary.Attributes); err != nil {
		return fmt.Errorf("insert attributes: %w", err)
	}

	metrics.ObserveCandidates(string(enrich.KindContact), len(summary.Contacts))
	metrics.ObserveCandidates(string(enrich.KindVenue), len(summary.Venues))
	metrics.ObserveCandidates(string(enrich.KindComp), len(summary.Comps))
	metrics.ObserveCandidates(string(enrich.KindDate), len(summary.Dates))
	metrics.ObserveCandidates(string(enrich.KindAttribute), len(summary.Attributes))
	return nil
}

func (s *Scheduler) failJob(ctx context.Context, job enrich.Job, jobErr error) JobOutcome {
	msg := "unknown_error"
	if jobErr != nil && jobErr.Error() != "" {
		msg = jobErr.Error()
	}
	if err := s.jobs.MarkError(ctx, job.ID, s.clock.Now(), msg); err != nil {
		s.logger.Error("mark error failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	s.logger.Warn("job failed",
		zap.String("job_id", job.ID),
		zap.String("tournament_id", job.TournamentID),
		zap.String("error", msg),
	)
	metrics.ObserveJob(string(enrich.JobStatusError))
	s.publishOutcome(ctx, job, enrich.JobStatusError, enrich.CrawlSummary{}, msg)

	return JobOutcome{
		JobID:        job.ID,
		TournamentID: job.TournamentID,
		Status:       enrich.JobStatusError,
		Error:        msg,
	}
}

// publishOutcome emits a completion event for the review UI. Publish failures
// are logged, never surfaced as job failures.
func (s *Scheduler) publishOutcome(
	ctx context.Context,
	job enrich.Job,
	status enrich.JobStatus,
	summary enrich.CrawlSummary,
	errText string,
) {
	if s.publisher == nil || s.cfg.Topic == "" {
		return
	}
	payload := map[string]any{
		"job_id":        job.ID,
		"tournament_id": job.TournamentID,
		"status":        status,
		"pages":         summary.PagesFetched,
		"contacts":      len(summary.Contacts),
		"venues":        len(summary.Venues),
		"comps":         len(summary.Comps),
		"dates":         len(summary.Dates),
		"attributes":    len(summary.Attributes),
		"finished_at":   s.clock.Now().Format("2006-01-02T15:04:05Z07:00"),
	}
	if errText != "" {
		payload["error"] = errText
	}
	if _, err := s.publisher.Publish(ctx, s.cfg.Topic, payload); err != nil {
		s.logger.Warn("publish outcome failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

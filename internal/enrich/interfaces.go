package enrich

import (
	"context"
	"time"
)

// JobStore persists enrichment job rows and enforces the at-most-one-active-job
// invariant at the application level.
type JobStore interface {
	// CreateJob inserts a queued job. It returns ErrDuplicateJob when the
	// tournament already has a queued or running job.
	CreateJob(ctx context.Context, job Job) error
	// ListQueued returns up to limit queued jobs ordered by creation time
	// ascending (oldest first).
	ListQueued(ctx context.Context, limit int) ([]Job, error)
	// MarkRunning transitions a job to running, bumping its attempt count,
	// stamping started_at, and clearing last_error.
	MarkRunning(ctx context.Context, jobID string, startedAt time.Time) error
	// MarkDone transitions a job to done with its page count.
	MarkDone(ctx context.Context, jobID string, finishedAt time.Time, pagesFetched int) error
	// MarkError transitions a job to error with a message.
	MarkError(ctx context.Context, jobID string, finishedAt time.Time, errText string) error
	GetJob(ctx context.Context, jobID string) (Job, error)
}

// CandidateStore appends extracted candidates and serves the review workflow.
// Candidates are append-only output of the pipeline; only the review workflow
// marks them accepted or rejected.
type CandidateStore interface {
	InsertContacts(ctx context.Context, rows []ContactCandidate) error
	InsertVenues(ctx context.Context, rows []VenueCandidate) error
	InsertComps(ctx context.Context, rows []CompCandidate) error
	InsertDates(ctx context.Context, rows []DateCandidate) error
	InsertAttributes(ctx context.Context, rows []AttributeCandidate) error
	// ListPending returns candidates that are neither accepted nor rejected.
	ListPending(ctx context.Context, tournamentID string) (PendingCandidates, error)
	MarkAccepted(ctx context.Context, kind CandidateKind, ids []string, at time.Time) error
	MarkRejected(ctx context.Context, kind CandidateKind, ids []string, at time.Time) error
}

// TournamentStore reads and updates canonical tournament records.
type TournamentStore interface {
	GetTournament(ctx context.Context, id string) (Tournament, error)
	UpdateTournament(ctx context.Context, t Tournament) error
}

// Fetcher fetches a single URL politely. A nil page with a nil error means the
// URL yielded no usable HTML (wrong content type); transport failures return an
// error. Callers treat both as "no page", which is not the same as "the
// tournament has no site".
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// BlobStore archives raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes job-completion events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests for blob paths and deduplication.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (injectable for tests).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs.
type IDGenerator interface {
	NewID() (string, error)
}

package enrich

import "errors"

// Sentinel errors callers branch on.
var (
	// ErrNoSourceURL is fatal for a job: the tournament has no website to crawl.
	ErrNoSourceURL = errors.New("tournament_url_missing")
	// ErrDuplicateJob signals an idempotent enqueue no-op: the tournament
	// already has a queued or running job.
	ErrDuplicateJob = errors.New("duplicate active job")
	// ErrNotFound signals a missing row.
	ErrNotFound = errors.New("not found")
)

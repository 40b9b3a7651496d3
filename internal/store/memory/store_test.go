package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

func queuedJob(id, tournamentID string, createdAt time.Time) enrich.Job {
	return enrich.Job{
		ID:           id,
		TournamentID: tournamentID,
		Status:       enrich.JobStatusQueued,
		CreatedAt:    createdAt,
	}
}

func TestJobStoreRefusesSecondActiveJob(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateJob(ctx, queuedJob("j-1", "t-1", now)))
	err := s.CreateJob(ctx, queuedJob("j-2", "t-1", now))
	assert.ErrorIs(t, err, enrich.ErrDuplicateJob)

	// Running still blocks a new job; terminal does not.
	require.NoError(t, s.MarkRunning(ctx, "j-1", now))
	assert.ErrorIs(t, s.CreateJob(ctx, queuedJob("j-3", "t-1", now)), enrich.ErrDuplicateJob)

	require.NoError(t, s.MarkDone(ctx, "j-1", now, 4))
	assert.NoError(t, s.CreateJob(ctx, queuedJob("j-4", "t-1", now)))
}

func TestJobStoreListQueuedOldestFirst(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	// Inserted out of creation order on purpose.
	require.NoError(t, s.CreateJob(ctx, queuedJob("j-2", "t-2", base.Add(time.Minute))))
	require.NoError(t, s.CreateJob(ctx, queuedJob("j-1", "t-1", base)))
	require.NoError(t, s.CreateJob(ctx, queuedJob("j-3", "t-3", base.Add(2*time.Minute))))

	queued, err := s.ListQueued(ctx, 2)
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, "j-1", queued[0].ID)
	assert.Equal(t, "j-2", queued[1].ID)
}

func TestJobStoreLifecycle(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	created := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	started := created.Add(time.Minute)
	finished := started.Add(time.Minute)

	require.NoError(t, s.CreateJob(ctx, queuedJob("j-1", "t-1", created)))
	require.NoError(t, s.MarkRunning(ctx, "j-1", started))

	job, err := s.GetJob(ctx, "j-1")
	require.NoError(t, err)
	assert.Equal(t, enrich.JobStatusRunning, job.Status)
	assert.Equal(t, 1, job.AttemptCount)
	require.NotNil(t, job.StartedAt)
	assert.Equal(t, started, *job.StartedAt)

	// Running jobs cannot be marked running again.
	assert.Error(t, s.MarkRunning(ctx, "j-1", started))

	require.NoError(t, s.MarkError(ctx, "j-1", finished, "tournament_url_missing"))
	job, err = s.GetJob(ctx, "j-1")
	require.NoError(t, err)
	assert.Equal(t, enrich.JobStatusError, job.Status)
	assert.Equal(t, "tournament_url_missing", job.LastError)

	// Terminal jobs never transition again.
	assert.Error(t, s.MarkDone(ctx, "j-1", finished, 3))
}

func TestJobStoreMissingJob(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()

	_, err := s.GetJob(ctx, "nope")
	assert.ErrorIs(t, err, enrich.ErrNotFound)
	assert.ErrorIs(t, s.MarkRunning(ctx, "nope", time.Now()), enrich.ErrNotFound)
	assert.ErrorIs(t, s.MarkDone(ctx, "nope", time.Now(), 0), enrich.ErrNotFound)
}

func TestCandidateStoreAssignsIDsAndFiltersByTournament(t *testing.T) {
	t.Parallel()

	s := NewCandidateStore()
	ctx := context.Background()

	require.NoError(t, s.InsertContacts(ctx, []enrich.ContactCandidate{
		{TournamentID: "t-1", Email: "a@club.org"},
		{TournamentID: "t-2", Email: "b@club.org"},
	}))
	require.NoError(t, s.InsertVenues(ctx, []enrich.VenueCandidate{
		{TournamentID: "t-1", VenueName: "Riverside Complex"},
	}))

	pending, err := s.ListPending(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, pending.Contacts, 1)
	require.Len(t, pending.Venues, 1)
	assert.NotEmpty(t, pending.Contacts[0].ID)
	assert.Equal(t, "a@club.org", pending.Contacts[0].Email)
}

func TestCandidateStoreAcceptRemovesFromPending(t *testing.T) {
	t.Parallel()

	s := NewCandidateStore()
	ctx := context.Background()
	require.NoError(t, s.InsertDates(ctx, []enrich.DateCandidate{
		{TournamentID: "t-1", StartDate: "2026-06-06"},
		{TournamentID: "t-1", StartDate: "2026-07-04"},
	}))

	pending, err := s.ListPending(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, pending.Dates, 2)

	at := time.Now()
	require.NoError(t, s.MarkAccepted(ctx, enrich.KindDate, []string{pending.Dates[0].ID}, at))
	require.NoError(t, s.MarkRejected(ctx, enrich.KindDate, []string{pending.Dates[1].ID}, at))

	pending, err = s.ListPending(ctx, "t-1")
	require.NoError(t, err)
	assert.Empty(t, pending.Dates)
}

func TestCandidateStoreStampUnknownID(t *testing.T) {
	t.Parallel()

	s := NewCandidateStore()
	err := s.MarkAccepted(context.Background(), enrich.KindContact, []string{"ghost"}, time.Now())
	assert.ErrorIs(t, err, enrich.ErrNotFound)
}

func TestTournamentStoreGetAndUpdate(t *testing.T) {
	t.Parallel()

	s := NewTournamentStore()
	ctx := context.Background()
	s.Put(enrich.Tournament{ID: "t-1", Name: "Spring Cup", SourceURL: "https://example.com"})

	got, err := s.GetTournament(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup", got.Name)

	got.DirectorName = "Jane Smith"
	require.NoError(t, s.UpdateTournament(ctx, got))
	got, err = s.GetTournament(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.DirectorName)

	_, err = s.GetTournament(ctx, "missing")
	assert.ErrorIs(t, err, enrich.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTournament(ctx, enrich.Tournament{ID: "missing"}), enrich.ErrNotFound)
}

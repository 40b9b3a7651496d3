package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

func TestCreateJobInsertsQueuedRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	job := enrich.Job{ID: "job-1", TournamentID: "t-1", CreatedAt: now}

	mock.ExpectExec("INSERT INTO enrichment_jobs").
		WithArgs(job.ID, job.TournamentID, job.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateJob(context.Background(), job))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateJobDuplicateWhenGuardMatches(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	job := enrich.Job{ID: "job-2", TournamentID: "t-1", CreatedAt: now}

	// Guarded insert touches zero rows when an active job already exists.
	mock.ExpectExec("INSERT INTO enrichment_jobs").
		WithArgs(job.ID, job.TournamentID, job.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = store.CreateJob(context.Background(), job)
	require.ErrorIs(t, err, enrich.ErrDuplicateJob)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateJobDuplicateOnUniqueViolation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	job := enrich.Job{ID: "job-3", TournamentID: "t-1", CreatedAt: now}

	// Two concurrent guarded inserts can both pass the WHERE NOT EXISTS
	// check; the partial unique index catches the loser.
	mock.ExpectExec("INSERT INTO enrichment_jobs").
		WithArgs(job.ID, job.TournamentID, job.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = store.CreateJob(context.Background(), job)
	require.ErrorIs(t, err, enrich.ErrDuplicateJob)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueuedReturnsOldestFirst(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0).UTC()
	t1 := t0.Add(time.Minute)

	cols := []string{"id", "tournament_id", "status", "attempt_count", "created_at", "started_at", "finished_at", "pages_fetched_count", "last_error"}
	mock.ExpectQuery("SELECT (.+) FROM enrichment_jobs").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("job-1", "t-1", enrich.JobStatusQueued, 0, t0, (*time.Time)(nil), (*time.Time)(nil), 0, "").
			AddRow("job-2", "t-2", enrich.JobStatusQueued, 0, t1, (*time.Time)(nil), (*time.Time)(nil), 0, ""))

	jobs, err := store.ListQueued(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "job-1", jobs[0].ID)
	require.Equal(t, "job-2", jobs[1].ID)
	require.Equal(t, enrich.JobStatusQueued, jobs[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRunningRequiresQueuedStatus(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	started := time.Unix(1700000000, 0).UTC()

	mock.ExpectExec("UPDATE enrichment_jobs").
		WithArgs("job-1", started).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.MarkRunning(context.Background(), "job-1", started)
	require.ErrorIs(t, err, enrich.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDoneStampsPageCount(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	finished := time.Unix(1700000000, 0).UTC()

	mock.ExpectExec("UPDATE enrichment_jobs").
		WithArgs("job-1", finished, 8).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.MarkDone(context.Background(), "job-1", finished, 8))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkErrorRecordsMessage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	finished := time.Unix(1700000000, 0).UTC()

	mock.ExpectExec("UPDATE enrichment_jobs").
		WithArgs("job-1", finished, "tournament_url_missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.MarkError(context.Background(), "job-1", finished, "tournament_url_missing"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJobNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewJobStore(mock)
	require.NoError(t, err)

	cols := []string{"id", "tournament_id", "status", "attempt_count", "created_at", "started_at", "finished_at", "pages_fetched_count", "last_error"}
	mock.ExpectQuery("SELECT (.+) FROM enrichment_jobs").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(cols))

	_, err = store.GetJob(context.Background(), "missing")
	require.ErrorIs(t, err, enrich.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

func tournamentCols() []string {
	return []string{
		"id", "name", "source_url",
		"director_name", "director_email", "director_phone",
		"ref_contact_name", "ref_contact_email", "ref_contact_phone",
		"venue_name", "venue_address", "venue_url",
		"start_date", "end_date", "comp_notes", "attributes",
	}
}

func TestGetTournamentReturnsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTournamentStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM tournaments").
		WithArgs("t-1").
		WillReturnRows(pgxmock.NewRows(tournamentCols()).
			AddRow("t-1", "Spring Classic", "https://example.com",
				"", "", "",
				"", "", "",
				"", "", "",
				"", "", "", map[string]string{"ref_parking": "free lot B"}))

	got, err := store.GetTournament(context.Background(), "t-1")
	require.NoError(t, err)
	require.Equal(t, "Spring Classic", got.Name)
	require.Equal(t, "https://example.com", got.SourceURL)
	require.Equal(t, "free lot B", got.Attributes["ref_parking"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTournamentNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTournamentStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM tournaments").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(tournamentCols()))

	_, err = store.GetTournament(context.Background(), "missing")
	require.ErrorIs(t, err, enrich.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTournamentWritesAllFields(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTournamentStore(mock)
	require.NoError(t, err)

	tourney := enrich.Tournament{
		ID:            "t-1",
		Name:          "Spring Classic",
		SourceURL:     "https://example.com",
		DirectorName:  "Pat Smith",
		DirectorEmail: "pat@example.com",
		VenueName:     "Riverside Complex",
		StartDate:     "2026-04-11",
		EndDate:       "2026-04-12",
		Attributes:    map[string]string{"referee_food": "lunch provided"},
	}

	mock.ExpectExec("UPDATE tournaments").
		WithArgs(tourney.ID,
			tourney.Name, tourney.SourceURL,
			tourney.DirectorName, tourney.DirectorEmail, tourney.DirectorPhone,
			tourney.RefContactName, tourney.RefContactEmail, tourney.RefContactPhone,
			tourney.VenueName, tourney.VenueAddress, tourney.VenueURL,
			tourney.StartDate, tourney.EndDate, tourney.CompNotes, tourney.Attributes).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.UpdateTournament(context.Background(), tourney))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTournamentMissingRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTournamentStore(mock)
	require.NoError(t, err)

	tourney := enrich.Tournament{ID: "missing", Name: "Ghost Cup", Attributes: map[string]string{}}

	mock.ExpectExec("UPDATE tournaments").
		WithArgs(tourney.ID,
			tourney.Name, tourney.SourceURL,
			tourney.DirectorName, tourney.DirectorEmail, tourney.DirectorPhone,
			tourney.RefContactName, tourney.RefContactEmail, tourney.RefContactPhone,
			tourney.VenueName, tourney.VenueAddress, tourney.VenueURL,
			tourney.StartDate, tourney.EndDate, tourney.CompNotes, tourney.Attributes).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.UpdateTournament(context.Background(), tourney)
	require.ErrorIs(t, err, enrich.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// TournamentStore reads and updates canonical tournament rows.
//
// Backing table:
//
//	CREATE TABLE tournaments (
//	    id                TEXT PRIMARY KEY,
//	    name              TEXT NOT NULL,
//	    source_url        TEXT NOT NULL DEFAULT '',
//	    director_name     TEXT NOT NULL DEFAULT '',
//	    director_email    TEXT NOT NULL DEFAULT '',
//	    director_phone    TEXT NOT NULL DEFAULT '',
//	    ref_contact_name  TEXT NOT NULL DEFAULT '',
//	    ref_contact_email TEXT NOT NULL DEFAULT '',
//	    ref_contact_phone TEXT NOT NULL DEFAULT '',
//	    venue_name        TEXT NOT NULL DEFAULT '',
//	    venue_address     TEXT NOT NULL DEFAULT '',
//	    venue_url         TEXT NOT NULL DEFAULT '',
//	    start_date        TEXT NOT NULL DEFAULT '',
//	    end_date          TEXT NOT NULL DEFAULT '',
//	    comp_notes        TEXT NOT NULL DEFAULT '',
//	    attributes        JSONB NOT NULL DEFAULT '{}'
//	);
type TournamentStore struct {
	pool dbPool
}

// NewTournamentStore constructs a TournamentStore over an existing pool.
func NewTournamentStore(pool dbPool) (*TournamentStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &TournamentStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *TournamentStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

const getTournamentSQL = `
SELECT id, name, source_url,
	director_name, director_email, director_phone,
	ref_contact_name, ref_contact_email, ref_contact_phone,
	venue_name, venue_address, venue_url,
	start_date, end_date, comp_notes, attributes
FROM tournaments
WHERE id = $1`

// GetTournament loads one tournament or ErrNotFound.
func (s *TournamentStore) GetTournament(ctx context.Context, id string) (enrich.Tournament, error) {
	var t enrich.Tournament
	row := s.pool.QueryRow(ctx, getTournamentSQL, id)
	err := row.Scan(&t.ID, &t.Name, &t.SourceURL,
		&t.DirectorName, &t.DirectorEmail, &t.DirectorPhone,
		&t.RefContactName, &t.RefContactEmail, &t.RefContactPhone,
		&t.VenueName, &t.VenueAddress, &t.VenueURL,
		&t.StartDate, &t.EndDate, &t.CompNotes, &t.Attributes)
	if errors.Is(err, pgx.ErrNoRows) {
		return enrich.Tournament{}, enrich.ErrNotFound
	}
	if err != nil {
		return enrich.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	return t, nil
}

const updateTournamentSQL = `
UPDATE tournaments SET
	name = $2, source_url = $3,
	director_name = $4, director_email = $5, director_phone = $6,
	ref_contact_name = $7, ref_contact_email = $8, ref_contact_phone = $9,
	venue_name = $10, venue_address = $11, venue_url = $12,
	start_date = $13, end_date = $14, comp_notes = $15, attributes = $16
WHERE id = $1`

// UpdateTournament writes all canonical fields back. The review merge owns the
// full record, so a blanket update is correct here.
func (s *TournamentStore) UpdateTournament(ctx context.Context, t enrich.Tournament) error {
	attrs := t.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	tag, err := s.pool.Exec(ctx, updateTournamentSQL, t.ID,
		t.Name, t.SourceURL,
		t.DirectorName, t.DirectorEmail, t.DirectorPhone,
		t.RefContactName, t.RefContactEmail, t.RefContactPhone,
		t.VenueName, t.VenueAddress, t.VenueURL,
		t.StartDate, t.EndDate, t.CompNotes, attrs)
	if err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrich.ErrNotFound
	}
	return nil
}

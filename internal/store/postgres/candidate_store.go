package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// CandidateStore persists one table per candidate kind. Rows are append-only;
// accepted_at/rejected_at are the only columns the review workflow touches.
//
// Each table shares the trailing review columns:
//
//	accepted_at TIMESTAMPTZ,
//	rejected_at TIMESTAMPTZ
type CandidateStore struct {
	pool dbPool
}

// NewCandidateStore constructs a CandidateStore over an existing pool.
func NewCandidateStore(pool dbPool) (*CandidateStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &CandidateStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *CandidateStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

var candidateTables = map[enrich.CandidateKind]string{
	enrich.KindContact:   "contact_candidates",
	enrich.KindVenue:     "venue_candidates",
	enrich.KindComp:      "comp_candidates",
	enrich.KindDate:      "date_candidates",
	enrich.KindAttribute: "attribute_candidates",
}

const insertContactSQL = `
INSERT INTO contact_candidates (tournament_id, role, name, email, phone, source_url, evidence_text, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// InsertContacts appends contact rows. Candidates are independent facts, so a
// partial batch insert is acceptable; the first failure propagates.
func (s *CandidateStore) InsertContacts(ctx context.Context, rows []enrich.ContactCandidate) error {
	for _, r := range rows {
		_, err := s.pool.Exec(ctx, insertContactSQL,
			r.TournamentID, string(r.Role), r.Name, r.Email, r.Phone,
			r.SourceURL, r.Evidence, r.Confidence)
		if err != nil {
			return fmt.Errorf("insert contact candidate: %w", err)
		}
	}
	return nil
}

const insertVenueSQL = `
INSERT INTO venue_candidates (tournament_id, venue_name, address_text, venue_url, source_url, evidence_text, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// InsertVenues appends venue rows.
func (s *CandidateStore) InsertVenues(ctx context.Context, rows []enrich.VenueCandidate) error {
	for _, r := range rows {
		_, err := s.pool.Exec(ctx, insertVenueSQL,
			r.TournamentID, r.VenueName, r.AddressText, r.VenueURL,
			r.SourceURL, r.Evidence, r.Confidence)
		if err != nil {
			return fmt.Errorf("insert venue candidate: %w", err)
		}
	}
	return nil
}

const insertCompSQL = `
INSERT INTO comp_candidates (tournament_id, rate_text, rate_amount_min, rate_amount_max, rate_unit,
	division_context, travel_lodging, travel_housing_text, assigning_platforms, source_url, evidence_text, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// InsertComps appends comp rows.
func (s *CandidateStore) InsertComps(ctx context.Context, rows []enrich.CompCandidate) error {
	for _, r := range rows {
		_, err := s.pool.Exec(ctx, insertCompSQL,
			r.TournamentID, r.RateText, r.RateAmountMin, r.RateAmountMax, string(r.RateUnit),
			r.DivisionContext, r.TravelLodging, r.TravelText, r.Platforms,
			r.SourceURL, r.Evidence, r.Confidence)
		if err != nil {
			return fmt.Errorf("insert comp candidate: %w", err)
		}
	}
	return nil
}

const insertDateSQL = `
INSERT INTO date_candidates (tournament_id, date_text, start_date, end_date, source_url, evidence_text, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// InsertDates appends date rows.
func (s *CandidateStore) InsertDates(ctx context.Context, rows []enrich.DateCandidate) error {
	for _, r := range rows {
		_, err := s.pool.Exec(ctx, insertDateSQL,
			r.TournamentID, r.DateText, r.StartDate, r.EndDate,
			r.SourceURL, r.Evidence, r.Confidence)
		if err != nil {
			return fmt.Errorf("insert date candidate: %w", err)
		}
	}
	return nil
}

const insertAttributeSQL = `
INSERT INTO attribute_candidates (tournament_id, attribute_key, attribute_value, source_url, evidence_text, confidence)
VALUES ($1, $2, $3, $4, $5, $6)`

// InsertAttributes appends attribute rows.
func (s *CandidateStore) InsertAttributes(ctx context.Context, rows []enrich.AttributeCandidate) error {
	for _, r := range rows {
		_, err := s.pool.Exec(ctx, insertAttributeSQL,
			r.TournamentID, string(r.Key), r.Value,
			r.SourceURL, r.Evidence, r.Confidence)
		if err != nil {
			return fmt.Errorf("insert attribute candidate: %w", err)
		}
	}
	return nil
}

// ListPending returns candidates that are neither accepted nor rejected.
func (s *CandidateStore) ListPending(ctx context.Context, tournamentID string) (enrich.PendingCandidates, error) {
	var out enrich.PendingCandidates

	rows, err := s.pool.Query(ctx, `
SELECT id, tournament_id, role, name, email, phone, source_url, evidence_text, confidence
FROM contact_candidates
WHERE tournament_id = $1 AND accepted_at IS NULL AND rejected_at IS NULL
ORDER BY id`, tournamentID)
	if err != nil {
		return out, fmt.Errorf("list pending contacts: %w", err)
	}
	for rows.Next() {
		var c enrich.ContactCandidate
		if err := rows.Scan(&c.ID, &c.TournamentID, &c.Role, &c.Name, &c.Email, &c.Phone,
			&c.SourceURL, &c.Evidence, &c.Confidence); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan contact candidate: %w", err)
		}
		out.Contacts = append(out.Contacts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list pending contacts: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
SELECT id, tournament_id, venue_name, address_text, venue_url, source_url, evidence_text, confidence
FROM venue_candidates
WHERE tournament_id = $1 AND accepted_at IS NULL AND rejected_at IS NULL
ORDER BY id`, tournamentID)
	if err != nil {
		return out, fmt.Errorf("list pending venues: %w", err)
	}
	for rows.Next() {
		var v enrich.VenueCandidate
		if err := rows.Scan(&v.ID, &v.TournamentID, &v.VenueName, &v.AddressText, &v.VenueURL,
			&v.SourceURL, &v.Evidence, &v.Confidence); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan venue candidate: %w", err)
		}
		out.Venues = append(out.Venues, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list pending venues: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
SELECT id, tournament_id, rate_text, rate_amount_min, rate_amount_max, rate_unit,
	division_context, travel_lodging, travel_housing_text, assigning_platforms, source_url, evidence_text, confidence
FROM comp_candidates
WHERE tournament_id = $1 AND accepted_at IS NULL AND rejected_at IS NULL
ORDER BY id`, tournamentID)
	if err != nil {
		return out, fmt.Errorf("list pending comps: %w", err)
	}
	for rows.Next() {
		var c enrich.CompCandidate
		var unit string
		if err := rows.Scan(&c.ID, &c.TournamentID, &c.RateText, &c.RateAmountMin, &c.RateAmountMax, &unit,
			&c.DivisionContext, &c.TravelLodging, &c.TravelText, &c.Platforms,
			&c.SourceURL, &c.Evidence, &c.Confidence); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan comp candidate: %w", err)
		}
		c.RateUnit = enrich.RateUnit(unit)
		out.Comps = append(out.Comps, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list pending comps: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
SELECT id, tournament_id, date_text, start_date, end_date, source_url, evidence_text, confidence
FROM date_candidates
WHERE tournament_id = $1 AND accepted_at IS NULL AND rejected_at IS NULL
ORDER BY id`, tournamentID)
	if err != nil {
		return out, fmt.Errorf("list pending dates: %w", err)
	}
	for rows.Next() {
		var d enrich.DateCandidate
		if err := rows.Scan(&d.ID, &d.TournamentID, &d.DateText, &d.StartDate, &d.EndDate,
			&d.SourceURL, &d.Evidence, &d.Confidence); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan date candidate: %w", err)
		}
		out.Dates = append(out.Dates, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list pending dates: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
SELECT id, tournament_id, attribute_key, attribute_value, source_url, evidence_text, confidence
FROM attribute_candidates
WHERE tournament_id = $1 AND accepted_at IS NULL AND rejected_at IS NULL
ORDER BY id`, tournamentID)
	if err != nil {
		return out, fmt.Errorf("list pending attributes: %w", err)
	}
	for rows.Next() {
		var a enrich.AttributeCandidate
		var key string
		if err := rows.Scan(&a.ID, &a.TournamentID, &key, &a.Value,
			&a.SourceURL, &a.Evidence, &a.Confidence); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan attribute candidate: %w", err)
		}
		a.Key = enrich.AttributeKey(key)
		out.Attributes = append(out.Attributes, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list pending attributes: %w", err)
	}

	return out, nil
}

// MarkAccepted stamps accepted_at on the selected rows.
func (s *CandidateStore) MarkAccepted(ctx context.Context, kind enrich.CandidateKind, ids []string, at time.Time) error {
	return s.stamp(ctx, kind, "accepted_at", ids, at)
}

// MarkRejected stamps rejected_at on the selected rows.
func (s *CandidateStore) MarkRejected(ctx context.Context, kind enrich.CandidateKind, ids []string, at time.Time) error {
	return s.stamp(ctx, kind, "rejected_at", ids, at)
}

func (s *CandidateStore) stamp(ctx context.Context, kind enrich.CandidateKind, column string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	table, ok := candidateTables[kind]
	if !ok {
		return fmt.Errorf("unknown candidate kind %q", kind)
	}
	sql := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE id = ANY($2)", table, column)
	if _, err := s.pool.Exec(ctx, sql, at, ids); err != nil {
		return fmt.Errorf("stamp %s.%s: %w", table, column, err)
	}
	return nil
}

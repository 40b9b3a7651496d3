package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

type rowState struct {
	acceptedAt *time.Time
	rejectedAt *time.Time
}

// CandidateStore keeps candidate rows in memory, assigning ids on insert.
type CandidateStore struct {
	mu         sync.RWMutex
	seq        int
	contacts   []enrich.ContactCandidate
	venues     []enrich.VenueCandidate
	comps      []enrich.CompCandidate
	dates      []enrich.DateCandidate
	attributes []enrich.AttributeCandidate
	states     map[string]*rowState
}

// NewCandidateStore constructs a CandidateStore.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{states: make(map[string]*rowState)}
}

func (s *CandidateStore) nextID(kind enrich.CandidateKind) string {
	s.seq++
	return fmt.Sprintf("%s-%d", kind, s.seq)
}

// InsertContacts appends contact rows.
func (s *CandidateStore) InsertContacts(_ context.Context, rows []enrich.ContactCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = s.nextID(enrich.KindContact)
		}
		s.states[r.ID] = &rowState{}
		s.contacts = append(s.contacts, r)
	}
	return nil
}

// InsertVenues appends venue rows.
func (s *CandidateStore) InsertVenues(_ context.Context, rows []enrich.VenueCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = s.nextID(enrich.KindVenue)
		}
		s.states[r.ID] = &rowState{}
		s.venues = append(s.venues, r)
	}
	return nil
}

// InsertComps appends comp rows.
func (s *CandidateStore) InsertComps(_ context.Context, rows []enrich.CompCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = s.nextID(enrich.KindComp)
		}
		s.states[r.ID] = &rowState{}
		s.comps = append(s.comps, r)
	}
	return nil
}

// InsertDates appends date rows.
func (s *CandidateStore) InsertDates(_ context.Context, rows []enrich.DateCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = s.nextID(enrich.KindDate)
		}
		s.states[r.ID] = &rowState{}
		s.dates = append(s.dates, r)
	}
	return nil
}

// InsertAttributes appends attribute rows.
func (s *CandidateStore) InsertAttributes(_ context.Context, rows []enrich.AttributeCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = s.nextID(enrich.KindAttribute)
		}
		s.states[r.ID] = &rowState{}
		s.attributes = append(s.attributes, r)
	}
	return nil
}

// ListPending returns candidates that are neither accepted nor rejected.
func (s *CandidateStore) ListPending(_ context.Context, tournamentID string) (enrich.PendingCandidates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out enrich.PendingCandidates
	for _, r := range s.contacts {
		if r.TournamentID == tournamentID && s.isPending(r.ID) {
			out.Contacts = append(out.Contacts, r)
		}
	}
	for _, r := range s.venues {
		if r.TournamentID == tournamentID && s.isPending(r.ID) {
			out.Venues = append(out.Venues, r)
		}
	}
	for _, r := range s.comps {
		if r.TournamentID == tournamentID && s.isPending(r.ID) {
			out.Comps = append(out.Comps, r)
		}
	}
	for _, r := range s.dates {
		if r.TournamentID == tournamentID && s.isPending(r.ID) {
			out.Dates = append(out.Dates, r)
		}
	}
	for _, r := range s.attributes {
		if r.TournamentID == tournamentID && s.isPending(r.ID) {
			out.Attributes = append(out.Attributes, r)
		}
	}
	return out, nil
}

func (s *CandidateStore) isPending(id string) bool {
	st, ok := s.states[id]
	return ok && st.acceptedAt == nil && st.rejectedAt == nil
}

// MarkAccepted stamps accepted_at on the given rows.
func (s *CandidateStore) MarkAccepted(_ context.Context, _ enrich.CandidateKind, ids []string, at time.Time) error {
	return s.stamp(ids, at, true)
}

// MarkRejected stamps rejected_at on the given rows.
func (s *CandidateStore) MarkRejected(_ context.Context, _ enrich.CandidateKind, ids []string, at time.Time) error {
	return s.stamp(ids, at, false)
}

func (s *CandidateStore) stamp(ids []string, at time.Time, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		st, ok := s.states[id]
		if !ok {
			return fmt.Errorf("candidate %s: %w", id, enrich.ErrNotFound)
		}
		ts := at
		if accepted {
			st.acceptedAt = &ts
		} else {
			st.rejectedAt = &ts
		}
	}
	return nil
}

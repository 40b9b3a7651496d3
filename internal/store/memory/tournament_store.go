package memory

import (
	"context"
	"sync"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// TournamentStore keeps canonical tournament records in memory.
type TournamentStore struct {
	mu          sync.RWMutex
	tournaments map[string]enrich.Tournament
}

// NewTournamentStore constructs a TournamentStore.
func NewTournamentStore() *TournamentStore {
	return &TournamentStore{tournaments: make(map[string]enrich.Tournament)}
}

// Put seeds or replaces a tournament record.
func (s *TournamentStore) Put(t enrich.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = t
}

// GetTournament fetches a tournament by id.
func (s *TournamentStore) GetTournament(_ context.Context, id string) (enrich.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return enrich.Tournament{}, enrich.ErrNotFound
	}
	return t, nil
}

// UpdateTournament replaces the stored record.
func (s *TournamentStore) UpdateTournament(_ context.Context, t enrich.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[t.ID]; !ok {
		return enrich.ErrNotFound
	}
	s.tournaments[t.ID] = t
	return nil
}

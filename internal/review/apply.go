package review

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// Selection names one candidate a reviewer picked.
type Selection struct {
	Kind        enrich.CandidateKind `json:"kind"`
	CandidateID string               `json:"candidate_id"`
}

// Merger applies reviewer decisions: accepted candidates merge into the
// canonical tournament record; rejected candidates are only marked, canonical
// data is never touched.
type Merger struct {
	candidates  enrich.CandidateStore
	tournaments enrich.TournamentStore
	clock       enrich.Clock
	logger      *zap.Logger
}

// NewMerger constructs a Merger.
func NewMerger(candidates enrich.CandidateStore, tournaments enrich.TournamentStore, clock enrich.Clock, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{
		candidates:  candidates,
		tournaments: tournaments,
		clock:       clock,
		logger:      logger,
	}
}

// Apply merges each selected candidate into the tournament's canonical fields
// and marks the underlying rows accepted.
func (m *Merger) Apply(ctx context.Context, tournamentID string, selections []Selection) error {
	if len(selections) == 0 {
		return nil
	}
	pending, err := m.candidates.ListPending(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list pending candidates: %w", err)
	}
	t, err := m.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}

	accepted := make(map[enrich.CandidateKind][]string)
	for _, sel := range selections {
		if !m.applyOne(&t, pending, sel) {
			return fmt.Errorf("candidate %s (%s): %w", sel.CandidateID, sel.Kind, enrich.ErrNotFound)
		}
		accepted[sel.Kind] = append(accepted[sel.Kind], sel.CandidateID)
	}

	if err := m.tournaments.UpdateTournament(ctx, t); err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}

	now := m.clock.Now()
	for kind, ids := range accepted {
		if err := m.candidates.MarkAccepted(ctx, kind, ids, now); err != nil {
			return fmt.Errorf("mark %s accepted: %w", kind, err)
		}
	}
	m.logger.Info("review applied",
		zap.String("tournament_id", tournamentID),
		zap.Int("selections", len(selections)),
	)
	return nil
}

// Reject marks the selected candidates rejected without touching canonical data.
func (m *Merger) Reject(ctx context.Context, tournamentID string, selections []Selection) error {
	rejected := make(map[enrich.CandidateKind][]string)
	for _, sel := range selections {
		rejected[sel.Kind] = append(rejected[sel.Kind], sel.CandidateID)
	}
	now := m.clock.Now()
	for kind, ids := range rejected {
		if err := m.candidates.MarkRejected(ctx, kind, ids, now); err != nil {
			return fmt.Errorf("mark %s rejected: %w", kind, err)
		}
	}
	m.logger.Info("review rejected",
		zap.String("tournament_id", tournamentID),
		zap.Int("selections", len(selections)),
	)
	return nil
}

func (m *Merger) applyOne(t *enrich.Tournament, pending enrich.PendingCandidates, sel Selection) bool {
	switch sel.Kind {
	case enrich.KindContact:
		for _, c := range pending.Contacts {
			if c.ID == sel.CandidateID {
				mergeContact(t, c)
				return true
			}
		}
	case enrich.KindVenue:
		for _, v := range pending.Venues {
			if v.ID == sel.CandidateID {
				mergeVenue(t, v)
				return true
			}
		}
	case enrich.KindComp:
		for _, c := range pending.Comps {
			if c.ID == sel.CandidateID {
				mergeComp(t, c)
				return true
			}
		}
	case enrich.KindDate:
		for _, d := range pending.Dates {
			if d.ID == sel.CandidateID {
				mergeDate(t, d)
				return true
			}
		}
	case enrich.KindAttribute:
		for _, a := range pending.Attributes {
			if a.ID == sel.CandidateID {
				if t.Attributes == nil {
					t.Attributes = make(map[string]string)
				}
				t.Attributes[string(a.Key)] = a.Value
				return true
			}
		}
	}
	return false
}

// mergeContact routes director candidates to the director fields and everyone
// else to the referee-contact fields.
func mergeContact(t *enrich.Tournament, c enrich.ContactCandidate) {
	if c.Role == enrich.RoleTD {
		setIfPresent(&t.DirectorName, c.Name)
		setIfPresent(&t.DirectorEmail, c.Email)
		setIfPresent(&t.DirectorPhone, c.Phone)
		return
	}
	setIfPresent(&t.RefContactName, c.Name)
	setIfPresent(&t.RefContactEmail, c.Email)
	setIfPresent(&t.RefContactPhone, c.Phone)
}

func mergeVenue(t *enrich.Tournament, v enrich.VenueCandidate) {
	setIfPresent(&t.VenueName, v.VenueName)
	setIfPresent(&t.VenueAddress, v.AddressText)
	setIfPresent(&t.VenueURL, v.VenueURL)
}

func mergeDate(t *enrich.Tournament, d enrich.DateCandidate) {
	setIfPresent(&t.StartDate, d.StartDate)
	setIfPresent(&t.EndDate, d.EndDate)
}

func mergeComp(t *enrich.Tournament, c enrich.CompCandidate) {
	note := strings.TrimSpace(c.RateText)
	if note == "" {
		return
	}
	if t.CompNotes == "" {
		t.CompNotes = note
		return
	}
	if !strings.Contains(t.CompNotes, note) {
		t.CompNotes += "\n" + note
	}
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

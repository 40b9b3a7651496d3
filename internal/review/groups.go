// Package review aggregates pending candidates into reviewable groups and
// applies reviewer decisions to canonical tournament records.
package review

import (
	"sort"
	"strings"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// BuildGroups merges raw candidates of the same kind and normalized signature
// into one reviewable item per group: the union of candidate ids, the highest
// confidence seen, and that candidate's source URL. Groups are recomputed from
// the live pending set on every call and are never cached.
func BuildGroups(tournamentID string, pending enrich.PendingCandidates) []enrich.ReviewGroup {
	byKey := make(map[string]*enrich.ReviewGroup)
	var keys []string

	add := func(kind enrich.CandidateKind, id, label, detail, sourceURL string, confidence float64) {
		label = strings.ToLower(strings.TrimSpace(label))
		detail = strings.ToLower(strings.TrimSpace(detail))
		sig := string(kind) + "|" + label + "|" + detail

		g, ok := byKey[sig]
		if !ok {
			g = &enrich.ReviewGroup{
				TournamentID: tournamentID,
				Kind:         kind,
				Signature:    sig,
				Label:        label,
				Detail:       detail,
			}
			byKey[sig] = g
			keys = append(keys, sig)
		}
		g.CandidateIDs = append(g.CandidateIDs, id)
		if confidence > g.Confidence {
			g.Confidence = confidence
			g.SourceURL = sourceURL
		}
	}

	for _, c := range pending.Contacts {
		detail := c.Email
		if detail == "" {
			detail = c.Phone
		}
		label := c.Name
		if label == "" {
			label = string(c.Role)
		}
		add(enrich.KindContact, c.ID, label, detail, c.SourceURL, c.Confidence)
	}
	for _, v := range pending.Venues {
		detail := v.AddressText
		if detail == "" {
			detail = v.VenueURL
		}
		add(enrich.KindVenue, v.ID, v.VenueName, detail, v.SourceURL, v.Confidence)
	}
	for _, c := range pending.Comps {
		add(enrich.KindComp, c.ID, c.RateText, c.DivisionContext, c.SourceURL, c.Confidence)
	}
	for _, d := range pending.Dates {
		add(enrich.KindDate, d.ID, d.StartDate, d.EndDate, d.SourceURL, d.Confidence)
	}
	for _, a := range pending.Attributes {
		add(enrich.KindAttribute, a.ID, string(a.Key), a.Value, a.SourceURL, a.Confidence)
	}

	out := make([]enrich.ReviewGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Signature < out[j].Signature
	})
	return out
}

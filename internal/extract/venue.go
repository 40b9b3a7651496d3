package extract

import (
	"regexp"
	"strings"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// addressRe matches an address-shaped substring: a leading house number
// followed by a word.
var addressRe = regexp.MustCompile(`\b\d{1,6}\s+[A-Za-z][A-Za-z.]+`)

// extractVenues scans heading and block-level elements for venue-keyword or
// address-shaped text. The block scan only runs when the page mentions a venue
// keyword at all; maps/directions links are captured regardless.
func extractVenues(p *pageDoc) []enrich.VenueCandidate {
	var out []enrich.VenueCandidate
	seen := make(map[string]struct{})

	add := func(c enrich.VenueCandidate) {
		sig := strings.ToLower(c.VenueName + "|" + c.AddressText + "|" + c.VenueURL)
		if _, dup := seen[sig]; dup {
			return
		}
		seen[sig] = struct{}{}
		out = append(out, c)
	}

	if containsAny(p.lowerText, venueKeywords) {
		for _, block := range p.blocks {
			lower := strings.ToLower(block)
			hasKeyword := containsAny(lower, venueKeywords)
			addr := addressRe.FindString(block)
			if !hasKeyword && addr == "" {
				continue
			}
			c := enrich.VenueCandidate{
				Evidence:   clip(block, 300),
				Confidence: scoreVenue(hasKeyword, addr != ""),
			}
			if hasKeyword {
				c.VenueName = clip(block, 120)
			}
			if addr != "" {
				c.AddressText = clip(block, 200)
			}
			add(c)
		}
	}

	for _, a := range p.anchors {
		lower := strings.ToLower(a.Href + " " + a.Text)
		if !strings.Contains(lower, "maps") && !strings.Contains(lower, "directions") {
			continue
		}
		href := a.Href
		if a.Abs != nil {
			href = a.Abs.String()
		}
		add(enrich.VenueCandidate{
			VenueURL:   href,
			Evidence:   clip(a.Text, 300),
			Confidence: venueMapLink,
		})
	}
	return out
}

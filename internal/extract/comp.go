package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

var (
	amountRe = regexp.MustCompile(`\$\s*(\d{1,5}(?:\.\d{1,2})?)`)
	rangeRe  = regexp.MustCompile(`\$\s*(\d{1,5}(?:\.\d{1,2})?)\s*(?:-|–|—|to)\s*\$?\s*(\d{1,5}(?:\.\d{1,2})?)`)
	// divisionRe matches age-group and role tokens that give a rate its context.
	divisionRe = regexp.MustCompile(`(?i)\b(u\d{2}|varsity|jv|final|semi|center|ar)\b`)
)

// extractComp scans visible-text lines for referee compensation facts. A line
// qualifies when it carries a dollar amount or a travel/lodging keyword.
// Evidence keeps the adjacent lines so amounts retain nearby context such as
// age-group headers.
func extractComp(p *pageDoc) ([]enrich.CompCandidate, []enrich.PDFHint) {
	var comps []enrich.CompCandidate
	seen := make(map[string]struct{})

	for i, line := range p.lines {
		lower := strings.ToLower(line)
		hasDollar := strings.Contains(line, "$")
		hasTravel := containsAny(lower, travelKeywords)
		if !hasDollar && !hasTravel {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}

		c := enrich.CompCandidate{RateText: line}

		min, max, hasAmount := parseAmounts(line)
		c.RateAmountMin = min
		c.RateAmountMax = max
		c.RateUnit = classifyRateUnit(lower)
		if m := divisionRe.FindString(line); m != "" {
			c.DivisionContext = m
		}
		c.TravelLodging = classifyTravelLodging(lower)
		c.Platforms = findPlatforms(lower)

		evidence := contextLines(p.lines, i)
		c.Evidence = clip(strings.Join(evidence, " "), 400)
		for _, l := range evidence {
			if containsAny(strings.ToLower(l), travelKeywords) {
				c.TravelText = l
				break
			}
		}

		c.Confidence = scoreComp(
			hasAmount,
			c.RateUnit != "",
			c.DivisionContext != "",
			containsAny(lower, rateKeywords),
		)
		comps = append(comps, c)
	}

	return comps, extractPDFHints(p)
}

func parseAmounts(line string) (min, max float64, ok bool) {
	if m := rangeRe.FindStringSubmatch(line); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return lo, hi, true
	}
	if m := amountRe.FindStringSubmatch(line); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, 0, true
	}
	return 0, 0, false
}

func classifyRateUnit(lower string) enrich.RateUnit {
	switch {
	case strings.Contains(lower, "per game") || strings.Contains(lower, "per match"):
		return enrich.RatePerGame
	case strings.Contains(lower, "per day"):
		return enrich.RatePerDay
	case strings.Contains(lower, "per hour"):
		return enrich.RatePerHour
	case strings.Contains(lower, "flat"):
		return enrich.RateFlat
	default:
		return ""
	}
}

func classifyTravelLodging(lower string) string {
	switch {
	case strings.Contains(lower, "hotel") || strings.Contains(lower, "housing") ||
		strings.Contains(lower, "lodging") || strings.Contains(lower, "accommodations"):
		return "hotel"
	case strings.Contains(lower, "stipend") || strings.Contains(lower, "per diem") ||
		strings.Contains(lower, "reimbursement"):
		return "stipend"
	default:
		return ""
	}
}

func findPlatforms(lower string) []string {
	var found []string
	for _, platform := range assigningPlatforms {
		if !strings.Contains(lower, platform) {
			continue
		}
		// "arbitersports" subsumes "arbiter".
		if platform == "arbiter" && strings.Contains(lower, "arbitersports") {
			continue
		}
		found = append(found, platform)
	}
	return found
}

func contextLines(lines []string, i int) []string {
	out := make([]string, 0, 3)
	if i > 0 {
		out = append(out, lines[i-1])
	}
	out = append(out, lines[i])
	if i+1 < len(lines) {
		out = append(out, lines[i+1])
	}
	return out
}

// extractPDFHints flags referee/official PDF links; PDF content itself is
// never fetched.
func extractPDFHints(p *pageDoc) []enrich.PDFHint {
	var hints []enrich.PDFHint
	seen := make(map[string]struct{})
	for _, a := range p.anchors {
		if !strings.Contains(strings.ToLower(a.Href), ".pdf") {
			continue
		}
		lower := strings.ToLower(a.Text)
		if !strings.Contains(lower, "referee") && !strings.Contains(lower, "official") {
			continue
		}
		href := a.Href
		if a.Abs != nil {
			href = a.Abs.String()
		}
		if _, dup := seen[href]; dup {
			continue
		}
		seen[href] = struct{}{}
		hints = append(hints, enrich.PDFHint{
			URL:        href,
			LinkText:   a.Text,
			Confidence: pdfHintConfidence,
		})
	}
	return hints
}

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

var monthNums = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

const monthAlt = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

var (
	// monthRangeRe matches "Mar 14-16, 2026" and cross-month forms like
	// "Mar 30 - Apr 1, 2026".
	monthRangeRe = regexp.MustCompile(
		`(?i)\b(` + monthAlt + `)[a-z]*\.?\s+(\d{1,2})\s*(?:-|–|—|to)\s*(?:(` + monthAlt + `)[a-z]*\.?\s+)?(\d{1,2}),?\s+(\d{4})`)
	// monthSingleRe matches "Mar 14, 2026".
	monthSingleRe = regexp.MustCompile(
		`(?i)\b(` + monthAlt + `)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})`)
	// numericDateRe matches MM/DD/YYYY.
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
)

// extractDates parses month-name ranges and numeric single dates into
// explicit ISO start/end dates, one candidate per distinct match.
func extractDates(p *pageDoc) []enrich.DateCandidate {
	var out []enrich.DateCandidate
	seen := make(map[string]struct{})
	claimed := newSpanSet()

	add := func(dateText, start, end string, lo, hi int, conf float64) {
		if start == "" {
			return
		}
		sig := start + "|" + end
		if _, dup := seen[sig]; dup {
			return
		}
		seen[sig] = struct{}{}
		claimed.add(lo, hi)
		out = append(out, enrich.DateCandidate{
			DateText:   strings.TrimSpace(dateText),
			StartDate:  start,
			EndDate:    end,
			Evidence:   clip(window(p.text, lo, hi, 80), 300),
			Confidence: conf,
		})
	}

	for _, idx := range monthRangeRe.FindAllStringSubmatchIndex(p.text, -1) {
		m := submatches(p.text, idx)
		year, _ := strconv.Atoi(m[5])
		startMonth := monthNums[strings.ToLower(m[1])[:3]]
		endMonth := startMonth
		if m[3] != "" {
			endMonth = monthNums[strings.ToLower(m[3])[:3]]
		}
		day1, _ := strconv.Atoi(m[2])
		day2, _ := strconv.Atoi(m[4])
		start := isoDate(year, startMonth, day1)
		end := isoDate(year, endMonth, day2)
		add(m[0], start, end, idx[0], idx[1], dateRangeConf)
	}

	for _, idx := range monthSingleRe.FindAllStringSubmatchIndex(p.text, -1) {
		if claimed.overlaps(idx[0], idx[1]) {
			continue
		}
		m := submatches(p.text, idx)
		year, _ := strconv.Atoi(m[3])
		month := monthNums[strings.ToLower(m[1])[:3]]
		day, _ := strconv.Atoi(m[2])
		add(m[0], isoDate(year, month, day), "", idx[0], idx[1], dateSingleConf)
	}

	for _, idx := range numericDateRe.FindAllStringSubmatchIndex(p.text, -1) {
		m := submatches(p.text, idx)
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		add(m[0], isoDate(year, month, day), "", idx[0], idx[1], dateSingleConf)
	}

	return out
}

func isoDate(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

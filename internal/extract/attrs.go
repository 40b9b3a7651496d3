package extract

import (
	"strings"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

// attributeTrigger maps one attribute key to the phrases that capture a line
// as its value. Order matters: earlier entries claim a line first, so
// parking-cost lines never double as plain parking lines.
type attributeTrigger struct {
	key     enrich.AttributeKey
	phrases []string
}

var attributeTriggers = []attributeTrigger{
	{enrich.AttrCashAtField, []string{"cash at the field", "cash at field", "paid at the field", "paid cash"}},
	{enrich.AttrRefereeTents, []string{"referee tent", "ref tent"}},
	{enrich.AttrRefParkingCost, []string{"parking fee", "parking cost", "paid parking", "parking pass"}},
	{enrich.AttrRefParking, []string{"referee parking", "ref parking", "parking"}},
	{enrich.AttrRefereeFood, []string{"meals provided", "food provided", "lunch provided", "snacks and water", "referee hospitality"}},
	{enrich.AttrFacilities, []string{"restroom", "concessions", "facilities"}},
	{enrich.AttrTravelLodging, []string{"hotel", "lodging", "housing", "stipend"}},
	{enrich.AttrRefGameSchedule, []string{"games per day", "game schedule", "schedule posted"}},
	{enrich.AttrMentors, []string{"mentor"}},
	{enrich.AttrAssignedAppropriately, []string{"assigned by level", "age appropriate", "age-appropriate", "appropriate level"}},
}

// extractAttributes captures keyword-triggered snippets keyed by the fixed
// attribute vocabulary, at most one candidate per key per page.
func extractAttributes(p *pageDoc) []enrich.AttributeCandidate {
	var out []enrich.AttributeCandidate
	captured := make(map[enrich.AttributeKey]struct{})
	usedLines := make(map[int]struct{})

	for _, trig := range attributeTriggers {
		if _, done := captured[trig.key]; done {
			continue
		}
		for i, line := range p.lines {
			if _, used := usedLines[i]; used {
				continue
			}
			if !containsAny(strings.ToLower(line), trig.phrases) {
				continue
			}
			captured[trig.key] = struct{}{}
			usedLines[i] = struct{}{}
			out = append(out, enrich.AttributeCandidate{
				Key:        trig.key,
				Value:      clip(line, 300),
				Evidence:   clip(line, 300),
				Confidence: attributeConf,
			})
			break
		}
	}
	return out
}

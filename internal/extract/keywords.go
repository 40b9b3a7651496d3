package extract

// Keyword lists shared by the extractors. The link ranker scores crawl
// frontier URLs against the union of these lists via Keywords().

var venueKeywords = []string{"venue", "location", "field", "complex", "park", "facility"}

var travelKeywords = []string{
	"hotel", "housing", "lodging", "accommodations", "travel",
	"mileage", "per diem", "meals", "reimbursement", "stipend", "airfare",
}

var rateKeywords = []string{"rate", "pay", "comp", "fee", "officials", "referee"}

var contactKeywords = []string{
	"contact", "assignor", "coordinator", "director", "staff", "email",
}

var assignorCues = []string{"assignor", "referee coordinator", "officials coordinator"}

var directorCues = []string{"tournament director", "event director", "director"}

// assigningPlatforms are known referee-assigning platforms worth routing
// follow-up to when mentioned near compensation text.
var assigningPlatforms = []string{"arbitersports", "arbiter", "assignr", "gameofficials", "zebraweb"}

// Keywords returns the union of all extractor keyword lists.
func Keywords() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{venueKeywords, travelKeywords, rateKeywords, contactKeywords, assignorCues, directorCues} {
		for _, k := range list {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

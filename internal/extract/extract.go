package extract

import "github.com/refsignal/tourney-enrich/internal/enrich"

// Extract runs every extractor over one page's HTML and stamps the source URL
// on each candidate. A page that fails to parse yields an empty result rather
// than an error; the crawl keeps going.
func Extract(html, pageURL string) enrich.PageResult {
	p, err := parsePage(html, pageURL)
	if err != nil {
		return enrich.PageResult{}
	}

	res := enrich.PageResult{
		Contacts:   extractContacts(p),
		Venues:     extractVenues(p),
		Dates:      extractDates(p),
		Attributes: extractAttributes(p),
	}
	res.Comps, res.PDFHints = extractComp(p)

	for i := range res.Contacts {
		res.Contacts[i].SourceURL = pageURL
	}
	for i := range res.Venues {
		res.Venues[i].SourceURL = pageURL
	}
	for i := range res.Comps {
		res.Comps[i].SourceURL = pageURL
	}
	for i := range res.Dates {
		res.Dates[i].SourceURL = pageURL
	}
	for i := range res.Attributes {
		res.Attributes[i].SourceURL = pageURL
	}
	for i := range res.PDFHints {
		res.PDFHints[i].SourceURL = pageURL
	}
	return res
}

// Package linkrank scores a page's outbound same-host links by how likely
// they are to contain extractable facts, to drive the crawl frontier.
package linkrank

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/refsignal/tourney-enrich/internal/extract"
)

const (
	keywordScore  = 2
	baselineScore = 1
)

type scoredLink struct {
	url   string
	score int
	order int
}

// Rank collects every anchor on the page, resolves and filters to same-host
// absolute URLs, and returns them highest-priority first. Links with no
// keyword hits still score 1 so a navigational crawl can make progress.
func Rank(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	keywords := extract.Keywords()
	byURL := make(map[string]*scoredLink)
	order := 0

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") ||
			strings.HasPrefix(lower, "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !sameHost(abs.Host, base.Host) {
			return
		}
		abs.Fragment = ""
		target := abs.String()

		score := scoreLink(abs.Path, sel.Text(), keywords)
		existing, ok := byURL[target]
		if !ok {
			byURL[target] = &scoredLink{url: target, score: score, order: order}
			order++
			return
		}
		// Multiple anchors to the same URL keep the best score seen.
		if score > existing.score {
			existing.score = score
		}
	})

	links := make([]*scoredLink, 0, len(byURL))
	for _, l := range byURL {
		links = append(links, l)
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].score != links[j].score {
			return links[i].score > links[j].score
		}
		return links[i].order < links[j].order
	})

	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.url
	}
	return out
}

func scoreLink(path, text string, keywords []string) int {
	haystack := strings.ToLower(path) + " " + strings.ToLower(text)
	score := 0
	for _, k := range keywords {
		score += keywordScore * strings.Count(haystack, k)
	}
	if score == 0 {
		score = baselineScore
	}
	return score
}

func sameHost(a, b string) bool {
	trim := func(h string) string {
		h = strings.ToLower(h)
		if i := strings.Index(h, ":"); i >= 0 {
			h = h[:i]
		}
		return strings.TrimPrefix(h, "www.")
	}
	return trim(a) == trim(b)
}

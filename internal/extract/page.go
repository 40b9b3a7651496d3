// Package extract turns a fetched HTML page into candidate facts: contacts,
// venues, referee compensation rates, event dates, and free-text attributes,
// each with an evidence snippet and a heuristic confidence score.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// anchor is one outbound link with its resolved absolute URL.
type anchor struct {
	Href string
	Text string
	Abs  *url.URL
}

// pageDoc wraps a parsed page with the derived views the extractors share:
// visible text, lowercased text, trimmed non-empty lines, block elements,
// and resolved anchors.
type pageDoc struct {
	url       *url.URL
	text      string
	lowerText string
	lines     []string
	blocks    []string
	anchors   []anchor
}

func parsePage(html, pageURL string) (*pageDoc, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	p := &pageDoc{
		url:       base,
		text:      text,
		lowerText: strings.ToLower(text),
		lines:     splitLines(text),
	}

	doc.Find("h1, h2, h3, li, p").Each(func(_ int, sel *goquery.Selection) {
		t := strings.TrimSpace(sel.Text())
		if t != "" {
			p.blocks = append(p.blocks, t)
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		a := anchor{Href: href, Text: strings.TrimSpace(sel.Text())}
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				a.Abs = base.ResolveReference(ref)
			}
		}
		p.anchors = append(p.anchors, a)
	})

	return p, nil
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// window returns ±radius characters of text around [start,end), clipped to
// the text bounds.
func window(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// clip truncates s to max bytes.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

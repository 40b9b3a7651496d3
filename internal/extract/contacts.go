package extract

import (
	"regexp"
	"strings"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

const evidenceRadius = 120

// deobfuscation strategies, applied in priority order. Each strategy claims
// the token positions it matches; later strategies skip claimed positions so
// one obfuscated token never yields two candidates.
var emailStrategies = []emailStrategy{
	{
		name: "plain",
		re:   regexp.MustCompile(`([a-zA-Z0-9._%+\-]+)@([a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`),
		build: func(m []string) string {
			return m[1] + "@" + m[2]
		},
	},
	{
		name: "bracket-at-dot",
		re:   regexp.MustCompile(`(?i)([a-zA-Z0-9._%+\-]+)\s*\[\s*at\s*\]\s*([a-zA-Z0-9\-]+)\s*\[\s*dot\s*\]\s*([a-zA-Z]{2,6})`),
		build: func(m []string) string {
			return m[1] + "@" + m[2] + "." + m[3]
		},
	},
	{
		name: "paren-at-dot",
		re:   regexp.MustCompile(`(?i)([a-zA-Z0-9._%+\-]+)\s*\(\s*at\s*\)\s*([a-zA-Z0-9\-]+)\s*\(\s*dot\s*\)\s*([a-zA-Z]{2,6})`),
		build: func(m []string) string {
			return m[1] + "@" + m[2] + "." + m[3]
		},
	},
	{
		name: "spaced-at-dot",
		re:   regexp.MustCompile(`(?i)\b([a-zA-Z0-9._%+\-]+)\s+at\s+([a-zA-Z0-9\-]+)\s+dot\s+([a-zA-Z]{2,6})\b`),
		build: func(m []string) string {
			return m[1] + "@" + m[2] + "." + m[3]
		},
	},
}

// looseObfuscationRe is the last-resort structural pattern: if the strict
// strategies found nothing but an at/dot token is present in some odd form,
// the page still gets one reduced-confidence contact.
var looseObfuscationRe = regexp.MustCompile(
	`(?i)([a-zA-Z0-9._%+\-]+)\s*[\[({]?\s*\bat\b\s*[\])}]?\s*([a-zA-Z0-9\-]+)\s*[\[({]?\s*\bdot\b\s*[\])}]?\s*([a-zA-Z]{2,6})`)

var (
	phoneRe = regexp.MustCompile(`(\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	nameRe  = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+(?:-[A-Z][a-z]+)?)\b`)
	digitRe = regexp.MustCompile(`\d`)
)

// analyticsTokens mark email local-parts that are really JS globals leaked
// into page text (gtag configs, datalayer pushes, and the like).
var analyticsTokens = []string{"datalayer", "gtag", "monsterinsights", "window", "navigator"}

// nameStopWords are capitalized word pairs that look like names but are page
// furniture.
var nameStopWords = map[string]struct{}{
	"Tournament": {}, "Director": {}, "Referee": {}, "Contact": {},
	"Email": {}, "Phone": {}, "Soccer": {}, "Registration": {},
	"Please": {}, "The": {}, "For": {}, "All": {},
}

type emailStrategy struct {
	name  string
	re    *regexp.Regexp
	build func(match []string) string
}

type contactHit struct {
	email      string
	phone      string
	start, end int // position in page text, -1 when only found in an href
}

// extractContacts runs the email/phone scans, builds one candidate per hit,
// and merges candidates that share an email or phone.
func extractContacts(p *pageDoc) []enrich.ContactCandidate {
	hits := scanEmails(p)
	hits = append(hits, scanPhones(p)...)

	agg := newContactAgg()
	for _, h := range hits {
		agg.add(buildContact(p, h))
	}

	out := agg.list()
	if len(out) == 0 {
		if c, ok := obfuscatedFallback(p); ok {
			out = append(out, c)
		}
	}
	promoteDirector(p, out)
	return out
}

// scanEmails applies the strategy cascade over page text plus mailto hrefs.
func scanEmails(p *pageDoc) []contactHit {
	var hits []contactHit
	claimed := newSpanSet()
	seen := make(map[string]struct{})

	add := func(email string, start, end int) {
		email = strings.ToLower(strings.TrimSpace(email))
		if !validEmail(email) {
			return
		}
		if start >= 0 && claimed.overlaps(start, end) {
			return
		}
		if _, dup := seen[email]; dup {
			if start >= 0 {
				claimed.add(start, end)
			}
			return
		}
		seen[email] = struct{}{}
		if start >= 0 {
			claimed.add(start, end)
		}
		hits = append(hits, contactHit{email: email, start: start, end: end})
	}

	for _, a := range p.anchors {
		if addr, ok := strings.CutPrefix(strings.ToLower(a.Href), "mailto:"); ok {
			addr, _, _ = strings.Cut(addr, "?")
			start, end := locate(p.lowerText, addr)
			add(addr, start, end)
		}
	}

	for _, s := range emailStrategies {
		for _, idx := range s.re.FindAllStringSubmatchIndex(p.text, -1) {
			m := submatches(p.text, idx)
			add(s.build(m), idx[0], idx[1])
		}
	}
	return hits
}

func scanPhones(p *pageDoc) []contactHit {
	var hits []contactHit
	seen := make(map[string]struct{})

	add := func(raw string, start, end int) {
		digits := digitRe.FindAllString(raw, -1)
		if len(digits) != 10 && len(digits) != 11 {
			return
		}
		key := strings.Join(digits, "")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		hits = append(hits, contactHit{phone: strings.TrimSpace(raw), start: start, end: end})
	}

	for _, a := range p.anchors {
		if num, ok := strings.CutPrefix(strings.ToLower(a.Href), "tel:"); ok {
			add(num, -1, -1)
		}
	}
	for _, idx := range phoneRe.FindAllStringIndex(p.text, -1) {
		// Reject matches embedded in longer digit runs.
		if idx[0] > 0 && isDigit(p.text[idx[0]-1]) {
			continue
		}
		if idx[1] < len(p.text) && isDigit(p.text[idx[1]]) {
			continue
		}
		add(p.text[idx[0]:idx[1]], idx[0], idx[1])
	}
	return hits
}

// validEmail applies the heuristics that separate real addresses from
// regex-matched analytics junk.
func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	if strings.Contains(local, "__") {
		return false
	}
	for _, tok := range analyticsTokens {
		if strings.Contains(local, tok) {
			return false
		}
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	labels := strings.Split(domain, ".")
	tld := labels[len(labels)-1]
	if len(tld) < 2 || len(tld) > 6 {
		return false
	}
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func buildContact(p *pageDoc, h contactHit) enrich.ContactCandidate {
	var win string
	if h.start >= 0 {
		win = window(p.text, h.start, h.end, evidenceRadius)
	} else if h.email != "" {
		win = h.email
	} else {
		win = h.phone
	}

	local, _, _ := strings.Cut(h.email, "@")
	role, inWindow := classifyRoleWindow(strings.ToLower(win), local)
	roleFromPage := false
	if role == "" {
		role, roleFromPage = classifyRolePage(p)
	}

	name := extractName(win)
	return enrich.ContactCandidate{
		Role:       role,
		Name:       name,
		Email:      h.email,
		Phone:      h.phone,
		Evidence:   clip(win, 300),
		Confidence: scoreContact(inWindow, roleFromPage && role != enrich.RoleGeneral, name != ""),
	}
}

// classifyRoleWindow inspects the evidence window: explicit assignor cues (or
// an assignor-shaped local-part) win over director cues.
func classifyRoleWindow(windowLower, localpart string) (enrich.ContactRole, bool) {
	if containsAny(windowLower, assignorCues) || strings.Contains(strings.ToLower(localpart), "assignor") {
		return enrich.RoleAssignor, true
	}
	if containsAny(windowLower, directorCues) {
		return enrich.RoleTD, true
	}
	return "", false
}

// classifyRolePage is the whole-page fallback when the window is inconclusive.
func classifyRolePage(p *pageDoc) (enrich.ContactRole, bool) {
	if containsAny(p.lowerText, assignorCues) {
		return enrich.RoleAssignor, true
	}
	if containsAny(p.lowerText, directorCues) {
		return enrich.RoleTD, true
	}
	if p.url != nil && strings.Contains(strings.ToLower(p.url.Path), "contact") {
		return enrich.RoleGeneral, true
	}
	if strings.Contains(p.lowerText, "contact us") {
		return enrich.RoleGeneral, true
	}
	return "", false
}

func extractName(win string) string {
	for _, m := range nameRe.FindAllStringSubmatch(win, -1) {
		if _, stop := nameStopWords[m[1]]; stop {
			continue
		}
		if _, stop := nameStopWords[m[2]]; stop {
			continue
		}
		return m[1] + " " + m[2]
	}
	return ""
}

// obfuscatedFallback emits one GENERAL contact when the strict scans found
// nothing but an obfuscated token is structurally present. Partial obfuscation
// schemes must not silently drop all contact info for a page.
func obfuscatedFallback(p *pageDoc) (enrich.ContactCandidate, bool) {
	idx := looseObfuscationRe.FindStringSubmatchIndex(p.text)
	if idx == nil {
		return enrich.ContactCandidate{}, false
	}
	m := submatches(p.text, idx)
	email := strings.ToLower(m[1] + "@" + m[2] + "." + m[3])
	if !validEmail(email) {
		return enrich.ContactCandidate{}, false
	}
	win := window(p.text, idx[0], idx[1], evidenceRadius)
	return enrich.ContactCandidate{
		Role:       enrich.RoleGeneral,
		Email:      email,
		Evidence:   clip(win, 300),
		Confidence: contactObfuscated,
	}, true
}

// promoteDirector biases toward a guess over no answer: when the page mentions
// a tournament director and emails were found but none was tagged TD, the
// first email becomes the TD candidate with a 0.7 confidence floor.
func promoteDirector(p *pageDoc, contacts []enrich.ContactCandidate) {
	if !strings.Contains(p.lowerText, "tournament director") {
		return
	}
	for i := range contacts {
		if contacts[i].Role == enrich.RoleTD {
			return
		}
	}
	for i := range contacts {
		if contacts[i].Email == "" {
			continue
		}
		contacts[i].Role = enrich.RoleTD
		if contacts[i].Confidence < contactTDFloor {
			contacts[i].Confidence = contactTDFloor
		}
		return
	}
}

// contactAgg merges same-page candidates sharing an email or phone.
type contactAgg struct {
	order []string
	byKey map[string]*enrich.ContactCandidate
}

func newContactAgg() *contactAgg {
	return &contactAgg{byKey: make(map[string]*enrich.ContactCandidate)}
}

func (a *contactAgg) key(c enrich.ContactCandidate) string {
	if c.Email != "" {
		return "e:" + c.Email
	}
	return "p:" + strings.Join(digitRe.FindAllString(c.Phone, -1), "")
}

func (a *contactAgg) add(c enrich.ContactCandidate) {
	k := a.key(c)
	existing, ok := a.byKey[k]
	if !ok {
		cp := c
		a.byKey[k] = &cp
		a.order = append(a.order, k)
		return
	}
	if existing.Name == "" {
		existing.Name = c.Name
	}
	if existing.Email == "" {
		existing.Email = c.Email
	}
	if existing.Phone == "" {
		existing.Phone = c.Phone
	}
	if moreSpecificRole(c.Role, existing.Role) {
		existing.Role = c.Role
	}
	if c.Confidence > existing.Confidence {
		existing.Confidence = c.Confidence
	}
}

func (a *contactAgg) list() []enrich.ContactCandidate {
	out := make([]enrich.ContactCandidate, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, *a.byKey[k])
	}
	return out
}

func moreSpecificRole(next, current enrich.ContactRole) bool {
	rank := func(r enrich.ContactRole) int {
		switch r {
		case enrich.RoleAssignor, enrich.RoleTD:
			return 2
		case enrich.RoleGeneral:
			return 1
		default:
			return 0
		}
	}
	return rank(next) > rank(current)
}

// spanSet tracks claimed [start,end) intervals in page text.
type spanSet struct {
	spans [][2]int
}

func newSpanSet() *spanSet { return &spanSet{} }

func (s *spanSet) overlaps(start, end int) bool {
	for _, sp := range s.spans {
		if start < sp[1] && end > sp[0] {
			return true
		}
	}
	return false
}

func (s *spanSet) add(start, end int) {
	s.spans = append(s.spans, [2]int{start, end})
}

func locate(lowerText, needle string) (int, int) {
	if needle == "" {
		return -1, -1
	}
	if i := strings.Index(lowerText, needle); i >= 0 {
		return i, i + len(needle)
	}
	if local, _, ok := strings.Cut(needle, "@"); ok {
		if i := strings.Index(lowerText, local); i >= 0 {
			return i, i + len(local)
		}
	}
	return -1, -1
}

func submatches(text string, idx []int) []string {
	m := make([]string, 0, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			m = append(m, "")
			continue
		}
		m = append(m, text[idx[i]:idx[i+1]])
	}
	return m
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

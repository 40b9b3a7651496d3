package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

func page(t *testing.T, html string) *pageDoc {
	t.Helper()
	p, err := parsePage(html, "https://example.com/contact")
	require.NoError(t, err)
	return p
}

func TestExtractContactsPlainEmailWithDirectorRole(t *testing.T) {
	t.Parallel()

	p := page(t, `<html><body>
		<p>Tournament Director: Jane Doe - jane.doe@example.com</p>
	</body></html>`)

	contacts := extractContacts(p)
	require.Len(t, contacts, 1)
	c := contacts[0]
	assert.Equal(t, "jane.doe@example.com", c.Email)
	assert.Equal(t, enrich.RoleTD, c.Role)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.InDelta(t, 0.9, c.Confidence, 1e-9)
	assert.Contains(t, c.Evidence, "jane.doe@example.com")
}

func TestExtractContactsDeobfuscation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "bracket at dot",
			html: `<p>Reach the assignor: john [at] club [dot] org</p>`,
			want: "john@club.org",
		},
		{
			name: "paren at dot",
			html: `<p>Reach the assignor: john (at) club (dot) org</p>`,
			want: "john@club.org",
		},
		{
			name: "spaced at dot",
			html: `<p>Reach the assignor: john at club dot org</p>`,
			want: "john@club.org",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			contacts := extractContacts(page(t, tt.html))
			require.Len(t, contacts, 1)
			assert.Equal(t, tt.want, contacts[0].Email)
			assert.Equal(t, enrich.RoleAssignor, contacts[0].Role)
		})
	}
}

func TestExtractContactsOneTokenOneCandidate(t *testing.T) {
	t.Parallel()

	// A single obfuscated token must not yield candidates from more than one
	// strategy.
	p := page(t, `<p>Email: pat [at] league [dot] com</p>`)
	contacts := extractContacts(p)
	require.Len(t, contacts, 1)
	assert.Equal(t, "pat@league.com", contacts[0].Email)
}

func TestExtractContactsMailtoDedupe(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Write to <a href="mailto:info@example.com">info@example.com</a> for details.</p>`)
	contacts := extractContacts(p)
	require.Len(t, contacts, 1)
	assert.Equal(t, "info@example.com", contacts[0].Email)
}

func TestExtractContactsPhone(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Questions? Call the referee coordinator at (555) 123-4567.</p>`)
	contacts := extractContacts(p)
	require.Len(t, contacts, 1)
	assert.Equal(t, "(555) 123-4567", contacts[0].Phone)
	assert.Equal(t, enrich.RoleAssignor, contacts[0].Role)
}

func TestScanPhonesRejectsEmbeddedDigitRuns(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Order confirmation 98555123456712 is not a phone.</p>`)
	assert.Empty(t, scanPhones(p))
}

func TestExtractContactsMergesEmailAndPhone(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Assignor Pat Smith: pat@club.org or 555-123-4567.
		Also reach Pat Smith at pat@club.org.</p>`)
	contacts := extractContacts(p)

	// Same email appears twice: one candidate. The phone is close enough that
	// it stays its own candidate merged only by key.
	emails := 0
	for _, c := range contacts {
		if c.Email == "pat@club.org" {
			emails++
		}
	}
	assert.Equal(t, 1, emails)
}

func TestValidEmailRejectsAnalyticsJunk(t *testing.T) {
	t.Parallel()

	assert.False(t, validEmail("datalayer.push@example.com"))
	assert.False(t, validEmail("gtag@example.com"))
	assert.False(t, validEmail("team__list@example.com"))
	assert.False(t, validEmail("user@nodomain"))
	assert.False(t, validEmail("user@example.x"))
	assert.False(t, validEmail("user@example.toolongtld"))
	assert.True(t, validEmail("jane.doe@example.co.uk"))
}

func TestObfuscatedFallback(t *testing.T) {
	t.Parallel()

	// Curly braces defeat every strict strategy; the structural fallback still
	// yields one reduced-confidence GENERAL contact.
	p := page(t, `<p>Email: jane {at} example {dot} com</p>`)
	contacts := extractContacts(p)
	require.Len(t, contacts, 1)
	assert.Equal(t, "jane@example.com", contacts[0].Email)
	assert.Equal(t, enrich.RoleGeneral, contacts[0].Role)
	assert.InDelta(t, 0.5, contacts[0].Confidence, 1e-9)
}

func TestPromoteDirectorFloorsConfidence(t *testing.T) {
	t.Parallel()

	// The assignor tag comes from the evidence window; the page separately
	// names a tournament director nobody was tagged as. The first email
	// contact is promoted with at least 0.7 confidence.
	p := page(t, `<body>
		<p>Referee assignments by our assignor: pat@club.org</p>
		<p>The tournament director will publish the schedule soon.</p>
	</body>`)

	contacts := extractContacts(p)
	require.NotEmpty(t, contacts)
	assert.Equal(t, enrich.RoleTD, contacts[0].Role)
	assert.GreaterOrEqual(t, contacts[0].Confidence, 0.7)
}

func TestExtractContactsEmptyPage(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Welcome to our tournament site.</p>`)
	assert.Empty(t, extractContacts(p))
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDatesMonthRange(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Join us March 14-16, 2026 at the complex.</p>`)
	dates := extractDates(p)
	require.Len(t, dates, 1)
	assert.Equal(t, "2026-03-14", dates[0].StartDate)
	assert.Equal(t, "2026-03-16", dates[0].EndDate)
	assert.InDelta(t, 0.7, dates[0].Confidence, 1e-9)
}

func TestExtractDatesCrossMonthRange(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Tournament weekend: Mar 30 - Apr 1, 2027.</p>`)
	dates := extractDates(p)
	require.Len(t, dates, 1)
	assert.Equal(t, "2027-03-30", dates[0].StartDate)
	assert.Equal(t, "2027-04-01", dates[0].EndDate)
}

func TestExtractDatesSingleMonth(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Registration closes June 5, 2026.</p>`)
	dates := extractDates(p)
	require.Len(t, dates, 1)
	assert.Equal(t, "2026-06-05", dates[0].StartDate)
	assert.Empty(t, dates[0].EndDate)
	assert.InDelta(t, 0.6, dates[0].Confidence, 1e-9)
}

func TestExtractDatesRangeClaimsItsSpan(t *testing.T) {
	t.Parallel()

	// The single-date pattern would also match inside "March 14-16, 2026";
	// the range match claims the span first.
	p := page(t, `<p>March 14-16, 2026</p>`)
	dates := extractDates(p)
	require.Len(t, dates, 1)
	assert.Equal(t, "2026-03-16", dates[0].EndDate)
}

func TestExtractDatesNumeric(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Coaches meeting on 06/07/2026 at 8am.</p>`)
	dates := extractDates(p)
	require.Len(t, dates, 1)
	assert.Equal(t, "2026-06-07", dates[0].StartDate)
	assert.Empty(t, dates[0].EndDate)
}

func TestExtractDatesRejectsImpossibleNumeric(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Reference number 13/45/2026 in all emails.</p>`)
	assert.Empty(t, extractDates(p))
}

func TestExtractDatesDedupesBySignature(t *testing.T) {
	t.Parallel()

	p := page(t, `<body>
		<p>Event: June 5, 2026</p>
		<p>Reminder: the event is June 5, 2026.</p>
	</body>`)
	dates := extractDates(p)
	assert.Len(t, dates, 1)
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsignal/tourney-enrich/internal/enrich"
)

func TestExtractAttributesCapturesKeyedLines(t *testing.T) {
	t.Parallel()

	p := page(t, `<body>
		<p>Referees are paid cash at the field after each game.</p>
		<p>Lunch provided in the referee tent.</p>
	</body>`)

	attrs := extractAttributes(p)
	keys := make(map[enrich.AttributeKey]string)
	for _, a := range attrs {
		keys[a.Key] = a.Value
		assert.InDelta(t, 0.5, a.Confidence, 1e-9)
	}
	assert.Contains(t, keys, enrich.AttrCashAtField)
	assert.Contains(t, keys, enrich.AttrRefereeTents)
}

func TestExtractAttributesParkingCostBeatsParking(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Parking fee is $5, referee parking is in lot B.</p>`)
	attrs := extractAttributes(p)
	require.Len(t, attrs, 1)
	assert.Equal(t, enrich.AttrRefParkingCost, attrs[0].Key)
}

func TestExtractAttributesOnePerKey(t *testing.T) {
	t.Parallel()

	p := page(t, `<body>
		<p>Free referee parking in lot A.</p>
		<p>More referee parking behind field 3.</p>
	</body>`)
	attrs := extractAttributes(p)
	require.Len(t, attrs, 1)
	assert.Equal(t, enrich.AttrRefParking, attrs[0].Key)
	assert.Contains(t, attrs[0].Value, "lot A")
}

func TestExtractAttributesNone(t *testing.T) {
	t.Parallel()

	p := page(t, `<p>Schedules are posted Friday night.</p>`)
	assert.Empty(t, extractAttributes(p))
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/core/domain"
)

func TestParseArea(t *testing.T) {
	v, ok := ParseArea("75,5 m²")
	assert.True(t, ok)
	assert.InDelta(t, 75.5, v, 0.001)

	_, ok = ParseArea("8")
	assert.False(t, ok)

	_, ok = ParseArea("1500")
	assert.False(t, ok)
}

func TestAreaFromText(t *testing.T) {
	v, ok := AreaFromText("Zimmer: 3, Wohnfläche: ca. 82 m², Balkon 6 m²")
	assert.True(t, ok)
	assert.InDelta(t, 82, v, 0.001)

	v, ok = AreaFromText("Schöne 64 m2 Wohnung")
	assert.True(t, ok)
	assert.InDelta(t, 64, v, 0.001)

	_, ok = AreaFromText("keine Angabe")
	assert.False(t, ok)
}

func TestAreaFromDoc(t *testing.T) {
	doc, err := ParseDocument(`<dl><dt>Zimmer</dt><dd>3</dd><dt>Wohnfläche</dt><dd>71,3 m²</dd></dl>`)
	require.NoError(t, err)

	v, ok := AreaFromDoc(doc)
	assert.True(t, ok)
	assert.InDelta(t, 71.3, v, 0.001)
}

func TestAreaPlausibleForCategory(t *testing.T) {
	assert.False(t, domain.AreaPlausibleFor(domain.CategoryApartment, 15))
	assert.False(t, domain.AreaPlausibleFor(domain.CategoryHouse, 15))
	assert.True(t, domain.AreaPlausibleFor(domain.CategoryHouse, 45))
	assert.True(t, domain.AreaPlausibleFor(domain.CategoryLand, 15))
}

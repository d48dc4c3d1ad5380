package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
		ok   bool
	}{
		{"millions format accepted", "Kaufpreis: € 45.000.000", 45_000_000, true},
		{"thousands format", "Preis € 349.000,- inkl.", 349_000, true},
		{"suffix euro", "Kaufpreis 289.500 €", 289_500, true},
		{"mio word", "Preis: 1,2 Mio. Euro", 1_200_000, true},
		{"too small rejected", "Ablöse € 3.000", 0, false},
		{"bare six digits", "Preisvorstellung 275 000 VB", 275_000, true},
		{"implausible small skipped for later match", "Kaution € 9.500, Kaufpreis € 420.000", 420_000, true},
		{"nothing", "Preis auf Anfrage", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PriceFromText(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStructuredPrice(t *testing.T) {
	v, ok := ParseStructuredPrice("349000")
	assert.True(t, ok)
	assert.Equal(t, 349_000, v)

	v, ok = ParseStructuredPrice("249000.00")
	assert.True(t, ok)
	assert.Equal(t, 249_000, v)

	v, ok = ParseStructuredPrice("1.250.000")
	assert.True(t, ok)
	assert.Equal(t, 1_250_000, v)

	v, ok = ParseStructuredPrice("250.500")
	assert.True(t, ok)
	assert.Equal(t, 250_500, v)

	v, ok = ParseStructuredPrice("349.000,00")
	assert.True(t, ok)
	assert.Equal(t, 349_000, v)

	_, ok = ParseStructuredPrice("49999")
	assert.False(t, ok)

	_, ok = ParseStructuredPrice("100000000")
	assert.False(t, ok)
}

func TestPrice_StructuredWins(t *testing.T) {
	v, ok := Price("310000", "€ 450.000")
	assert.True(t, ok)
	assert.Equal(t, 310_000, v)

	v, ok = Price("", "€ 450.000")
	assert.True(t, ok)
	assert.Equal(t, 450_000, v)
}

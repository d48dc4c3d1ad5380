package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation_Priority(t *testing.T) {
	doc, err := ParseDocument(`<div class="address">Favoritenstraße 12, 1100 Wien</div>`)
	require.NoError(t, err)

	loc := ResolveLocation("1030", "Wien", doc, "", "")
	assert.Equal(t, "1030 Wien", loc.Text)
	assert.Equal(t, "1030", loc.PostalCode)

	loc = ResolveLocation("", "", doc, "", "")
	assert.Equal(t, "Favoritenstraße 12, 1100 Wien", loc.Text)
	assert.Equal(t, "1100", loc.PostalCode)

	loc = ResolveLocation("", "", nil, "https://example.at/kaufen/1120-wien-meidling/objekt-1", "")
	assert.Equal(t, "1120", loc.PostalCode)

	loc = ResolveLocation("", "", nil, "", "Die Wohnung liegt in der Hauptstraße 5 nahe dem Park")
	assert.Equal(t, "Hauptstraße 5", loc.Text)
	assert.Empty(t, loc.PostalCode)
}

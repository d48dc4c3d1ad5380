package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/core/domain"
)

func TestDescriptionFromDoc_HeadingSiblings(t *testing.T) {
	doc, err := ParseDocument(`<main>
<h2>Beschreibung</h2><p>Helle Wohnung.</p><p>Ruhige Lage.</p>
<h2>Ausstattung</h2><p>Lift</p></main>`)
	require.NoError(t, err)

	assert.Equal(t, "Helle Wohnung.\nRuhige Lage.", DescriptionFromDoc(doc))
}

func TestDescriptionFromDoc_LabeledFirst(t *testing.T) {
	doc, err := ParseDocument(`<div itemprop="description">Vom Eigentümer</div><div class="description">Andere</div>`)
	require.NoError(t, err)

	assert.Equal(t, "Vom Eigentümer", DescriptionFromDoc(doc))
}

func TestDescriptionFromText(t *testing.T) {
	got := DescriptionFromText("Objektbeschreibung: Sonnige Maisonette mit Terrasse und Blick. Kontakt: Frau Huber")
	assert.Equal(t, "Sonnige Maisonette mit Terrasse und Blick.", got)
}

func TestCleanDescription(t *testing.T) {
	raw := "  Schöne   Wohnung\n\n\n\n mit Garten.  \nJetzt kontaktieren und Termin vereinbaren"
	assert.Equal(t, "Schöne Wohnung\n\nmit Garten.", CleanDescription(raw))

	long := strings.Repeat("ä", domain.MaxDescriptionLen+100)
	assert.Equal(t, domain.MaxDescriptionLen, len([]rune(CleanDescription(long))))
}

func TestCleanDescription_CutsTailWhenLowercaseChangesLength(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"capital sharp s", "GROẞE Terrasse, Blick ins Grüne.\nANGABEN OHNE GEWÄHR, Irrtum vorbehalten", "GROẞE Terrasse, Blick ins Grüne."},
		{"dotted capital i", "Nähe İstanbul Kebap, U6.\nFinanzierungsbeispiel: 30 Jahre", "Nähe İstanbul Kebap, U6."},
		{"earliest marker wins", "Helle Wohnung. Impressum. Jetzt kontaktieren", "Helle Wohnung."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.raw))
		})
	}
}

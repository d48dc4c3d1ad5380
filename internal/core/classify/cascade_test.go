package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"immo-parser-service/internal/core/domain"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestCascade_Classify(t *testing.T) {
	c := NewCascade(DefaultProfile())

	tests := []struct {
		name    string
		in      domain.ClassificationInput
		allowed bool
		stage   int
	}{
		{
			name:  "flag false blocks immediately",
			in:    domain.ClassificationInput{Flag: boolPtr(false), BodyText: "Privatverkauf ohne Makler"},
			stage: StageFlag,
		},
		{
			name:  "flag true with fee language",
			in:    domain.ClassificationInput{Flag: boolPtr(true), BodyText: "Käuferprovision 3% zzgl. USt."},
			stage: StageFeeLanguage,
		},
		{
			name:  "flag true with company keyword",
			in:    domain.ClassificationInput{Flag: boolPtr(true), CompanyName: strPtr("Huber Realitäten")},
			stage: StageCompanyName,
		},
		{
			name:    "flag true clean",
			in:      domain.ClassificationInput{Flag: boolPtr(true), BodyText: "Schöne Wohnung mit Balkon"},
			allowed: true,
			stage:   StageCompanyName,
		},
		{
			name:    "flag true with negated fee phrase stays private",
			in:      domain.ClassificationInput{Flag: boolPtr(true), BodyText: "Verkauf provisionsfrei, keine Provision!"},
			allowed: true,
			stage:   StageCompanyName,
		},
		{
			name:  "unknown flag with company keyword",
			in:    domain.ClassificationInput{CompanyName: strPtr("Example Immobilien GmbH")},
			stage: StageCompanyName,
		},
		{
			name:  "short keyword only as a word",
			in:    domain.ClassificationInput{CompanyName: strPtr("Muster & Partner KG")},
			stage: StageCompanyName,
		},
		{
			name:    "private sentinel",
			in:      domain.ClassificationInput{CompanyName: strPtr("  Privat ")},
			allowed: true,
			stage:   StageCompanySentinel,
		},
		{
			name:  "commission in text",
			in:    domain.ClassificationInput{BodyText: "Die Maklergebühr beträgt 3%"},
			stage: StageBodyText,
		},
		{
			name:    "private phrase in text",
			in:      domain.ClassificationInput{BodyText: "Verkauf von privat, bitte keine Anfragen von Maklern"},
			allowed: true,
			stage:   StageBodyText,
		},
		{
			name:  "no signal blocks by default",
			in:    domain.ClassificationInput{CompanyName: strPtr("Maria Gruber"), BodyText: "Helle Wohnung"},
			stage: StageDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.in)
			assert.Equal(t, tt.allowed, v.Allowed, v.Reason)
			assert.Equal(t, tt.stage, v.Stage, v.Reason)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestCascade_CompanyKeywordNeverAllowed(t *testing.T) {
	c := NewCascade(DefaultProfile())
	company := strPtr("RE/MAX Donaustadt")

	for _, flag := range []*bool{nil, boolPtr(true)} {
		v := c.Classify(domain.ClassificationInput{
			Flag:        flag,
			CompanyName: company,
			BodyText:    "Privatverkauf, provisionsfrei",
		})
		assert.False(t, v.Allowed)
	}
}

func TestCascade_Deterministic(t *testing.T) {
	c := NewCascade(DefaultProfile())
	in := domain.ClassificationInput{CompanyName: strPtr("Immo Consulting"), BodyText: "von privat"}

	first := c.Classify(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(in))
	}
}

func TestCascade_ShortKeywordInsideWordIgnored(t *testing.T) {
	c := NewCascade(DefaultProfile())

	// "ag" и "og" внутри обычных слов не должны срабатывать
	v := c.Classify(domain.ClassificationInput{CompanyName: strPtr("Hagen Mogg"), BodyText: "privatverkauf"})
	assert.True(t, v.Allowed)
	assert.Equal(t, StageBodyText, v.Stage)
}

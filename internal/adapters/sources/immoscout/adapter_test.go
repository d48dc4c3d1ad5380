package immoscout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/adapters/sources"
	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/classify"
	"immo-parser-service/internal/core/domain"
)

const detailURL = "https://www.immobilienscout24.at/expose/6512ab98"

func newAdapter() *Adapter {
	return New(sources.Options{Profile: classify.DefaultProfile(), PhoneDenyList: constants.PhoneDenyList})
}

// detailPage собирает страницу объявления; expose подставляется в JSON состояния
func detailPage(expose string) string {
	return `<html><head><title>Expose | ImmobilienScout24</title></head><body>
<script>window.__INITIAL_STATE__={"expose":{` + expose + `}}</script>
<h1>Sonnige Wohnung in Währing</h1>
<img src="https://pictures.immobilienscout24.at/listings/6512ab98/1.jpg">
<img src="https://pictures.immobilienscout24.at/resize/120x90/listings/6512ab98/1.jpg">
<img src="https://pictures.immobilienscout24.at/listings/6512ab98/2.jpg">
<a href="tel:0664 7654321">Anrufen</a>
</body></html>`
}

const baseExpose = `"headline":"Sonnige Wohnung in Währing","purchasePrice":420000,"livingArea":84.5,` +
	`"zipCode":"1180","city":"Wien","street":"Gentzgasse 12",` +
	`"publishDate":"2026-09-28T10:00:00Z","latitude":48.2268,"longitude":16.3370`

func TestExtractCandidates(t *testing.T) {
	a := newAdapter()
	body := `<div class="results">
		<a href="/expose/6512ab98">Sonnige Wohnung</a>
		<a href="/expose/6512ab98#gallery">Galerie</a>
		<a href="/expose/77aa01">Haus mit Garten</a>
		<a href="/regional/wien/seite-2">weiter</a>
	</div>`

	cands, err := a.ExtractCandidates(body, a.ListFeeds()[0])
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, detailURL, cands[0].DetailURL)
	assert.False(t, cands[0].IsInline())
}

func TestExtractDetailPrivateSeller(t *testing.T) {
	a := newAdapter()
	body := detailPage(baseExpose + `,"description":"Helle Wohnung mit Balkon, direkt vom Eigentümer.","isPrivate":true,"companyName":null`)

	res, err := a.ExtractDetail(body, a.ListFeeds()[0], detailURL)
	require.NoError(t, err)
	require.NotNil(t, res.Listing)

	assert.True(t, res.Verdict.Allowed)
	assert.Equal(t, classify.StageCompanyName, res.Verdict.Stage)

	l := res.Listing
	assert.Equal(t, "6512ab98", l.ExternalID)
	assert.Equal(t, detailURL, l.URL)
	assert.Equal(t, "Sonnige Wohnung in Währing", l.Title)
	assert.Equal(t, 420000, l.Price)
	require.NotNil(t, l.AreaM2)
	assert.InDelta(t, 84.5, *l.AreaM2, 0.001)
	assert.Equal(t, "Gentzgasse 12, 1180 Wien", l.Location)
	require.NotNil(t, l.DistrictCode)
	assert.Equal(t, 18, *l.DistrictCode)
	assert.Equal(t, []string{
		"https://pictures.immobilienscout24.at/listings/6512ab98/1.jpg",
		"https://pictures.immobilienscout24.at/listings/6512ab98/2.jpg",
	}, l.Images)
	require.NotNil(t, l.Phone)
	assert.Equal(t, "06647654321", *l.Phone)
	require.NotNil(t, l.PublishedAt)
	assert.Equal(t, 2026, l.PublishedAt.Year())
	assert.NotEmpty(t, l.Geohash)
	assert.Equal(t, domain.SourceImmoscout, l.Source)
}

func TestExtractDetailClassification(t *testing.T) {
	a := newAdapter()
	feed := a.ListFeeds()[0]

	tests := []struct {
		name    string
		expose  string
		allowed bool
		stage   int
	}{
		{
			name:    "flag private but fee language",
			expose:  `,"description":"Kaufpreis zzgl. 3% Provision","isPrivate":true`,
			allowed: false,
			stage:   classify.StageFeeLanguage,
		},
		{
			name:    "no flag, agency company",
			expose:  `,"description":"Schöne Wohnung","isPrivate":null,"companyName":"Example Immobilien GmbH"`,
			allowed: false,
			stage:   classify.StageCompanyName,
		},
		{
			name:    "flag commercial",
			expose:  `,"description":"Schöne Wohnung","isPrivate":false`,
			allowed: false,
			stage:   classify.StageFlag,
		},
		{
			name:    "no signals",
			expose:  `,"description":"Schöne Wohnung"`,
			allowed: false,
			stage:   classify.StageDefault,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.ExtractDetail(detailPage(baseExpose+tt.expose), feed, detailURL)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, res.Verdict.Allowed)
			assert.Equal(t, tt.stage, res.Verdict.Stage)
			assert.NotEmpty(t, res.Verdict.Reason)
		})
	}
}

func TestExtractDetailCompanyFromDOM(t *testing.T) {
	a := newAdapter()
	body := strings.Replace(detailPage(baseExpose+`,"description":"Schöne Wohnung"`),
		"</body>", `<div data-testid="contact-company-name">RE/MAX Wien</div></body>`, 1)

	res, err := a.ExtractDetail(body, a.ListFeeds()[0], detailURL)
	require.NoError(t, err)
	assert.False(t, res.Verdict.Allowed)
	assert.Equal(t, classify.StageCompanyName, res.Verdict.Stage)
}

func TestExtractDetailRemoved(t *testing.T) {
	a := newAdapter()
	res, err := a.ExtractDetail(`<p>Dieses Expose ist nicht mehr verfügbar.</p>`, a.ListFeeds()[0], detailURL)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Nil(t, res.Listing)
}

package willhaben

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/adapters/sources"
	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/classify"
	"immo-parser-service/internal/core/domain"
)

func attr(name string, values ...string) string {
	out := `{"name":"` + name + `","values":[`
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += `"` + v + `"`
	}
	return out + `]}`
}

func join(parts ...string) string {
	out := `<script id="__NEXT_DATA__">{"advertSummary":[`
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out + `]}</script>`
}

func newAdapter(requireDistrict bool) *Adapter {
	return New(Options{
		Options:         sources.Options{Profile: classify.DefaultProfile(), PhoneDenyList: constants.PhoneDenyList},
		RequireDistrict: requireDistrict,
	})
}

func viennaFeed(a *Adapter) domain.Feed { return a.ListFeeds()[0] }

var privateAdvert = []string{
	attr("ADID", "880011"),
	attr("SEO_URL", "immobilien/d/eigentumswohnung/wien/wien-1070-neubau/helle-altbauwohnung-880011/"),
	attr("HEADING", "Helle Altbauwohnung"),
	attr("PRICE", "349000"),
	attr("ESTATE_SIZE/LIVING_AREA", "72"),
	attr("POSTCODE", "1070"),
	attr("LOCATION", "Wien"),
	attr("ALL_IMAGE_URLS", "a/b/880011_1.jpg;a/b/880011_2.jpg;a/b/880011_1.jpg"),
	attr("BODY_DYN", "Privatverkauf, ruhige Lage"),
	attr("PUBLISHED", "2026-10-01T09:30:00+02:00"),
	attr("COORDINATES", "48.2006,16.3490"),
	attr("ISPRIVATE", "1"),
	// вложенный блок того же объявления не должен перезаписывать цену
	attr("ADID", "880011"),
	attr("PRICE", "1"),
}

var agencyAdvert = []string{
	attr("ADID", "880012"),
	attr("SEO_URL", "immobilien/d/eigentumswohnung/wien/wien-1020/agentur-880012/"),
	attr("HEADING", "Neubauprojekt"),
	attr("PRICE", "520000"),
	attr("ESTATE_SIZE/LIVING_AREA", "80"),
	attr("POSTCODE", "1020"),
	attr("ISPRIVATE", "0"),
	attr("ORGNAME", "Beispiel Immobilien GmbH"),
}

func TestExtractCandidatesGroupsByADID(t *testing.T) {
	a := newAdapter(false)
	body := join(append(append([]string{}, privateAdvert...), agencyAdvert...)...)

	cands, err := a.ExtractCandidates(body, viennaFeed(a))
	require.NoError(t, err)
	require.Len(t, cands, 2)

	first := cands[0]
	require.True(t, first.IsInline())
	l := first.Listing
	assert.Equal(t, "880011", l.ExternalID)
	assert.Equal(t, "https://www.willhaben.at/iad/immobilien/d/eigentumswohnung/wien/wien-1070-neubau/helle-altbauwohnung-880011", l.URL)
	assert.Equal(t, "Helle Altbauwohnung", l.Title)
	assert.Equal(t, 349000, l.Price)
	require.NotNil(t, l.AreaM2)
	assert.InDelta(t, 72.0, *l.AreaM2, 0.001)
	assert.Equal(t, "1070", l.PostalCode)
	require.NotNil(t, l.DistrictCode)
	assert.Equal(t, 7, *l.DistrictCode)
	assert.Equal(t, []string{
		"https://cache.willhaben.at/mmo/a/b/880011_1.jpg",
		"https://cache.willhaben.at/mmo/a/b/880011_2.jpg",
	}, l.Images)
	require.NotNil(t, l.PublishedAt)
	assert.NotEmpty(t, l.Geohash)
	assert.True(t, first.Verdict.Allowed)
	assert.Equal(t, classify.StageCompanyName, first.Verdict.Stage)

	second := cands[1]
	assert.Equal(t, "880012", second.Listing.ExternalID)
	assert.False(t, second.Verdict.Allowed)
	assert.Equal(t, classify.StageFlag, second.Verdict.Stage)
}

func TestExtractCandidatesSkipsIncomplete(t *testing.T) {
	a := newAdapter(false)
	body := join(attr("ADID", "1"), attr("HEADING", "ohne url"))

	cands, err := a.ExtractCandidates(body, viennaFeed(a))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestRequireDistrict(t *testing.T) {
	advert := []string{
		attr("ADID", "5"),
		attr("SEO_URL", "immobilien/d/eigentumswohnung/wien/x-5/"),
		attr("PRICE", "300000"),
		attr("ISPRIVATE", "1"),
	}
	body := join(advert...)

	lenient := newAdapter(false)
	cands, err := lenient.ExtractCandidates(body, viennaFeed(lenient))
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Nil(t, cands[0].Listing.DistrictCode)

	strict := newAdapter(true)
	cands, err = strict.ExtractCandidates(body, viennaFeed(strict))
	require.NoError(t, err)
	assert.Empty(t, cands)

	// вне Вены район не нужен
	lowerAustria := strict.ListFeeds()[3]
	cands, err = strict.ExtractCandidates(body, lowerAustria)
	require.NoError(t, err)
	assert.Len(t, cands, 1)
}

func TestFlagMissingFallsBackToText(t *testing.T) {
	a := newAdapter(false)
	body := join(
		attr("ADID", "9"),
		attr("SEO_URL", "immobilien/d/haus-kaufen/wien/x-9/"),
		attr("PRICE", "700000"),
		attr("POSTCODE", "1190"),
		attr("DESCRIPTION", "Verkauf inkl. 3% Provision"),
	)
	cands, err := a.ExtractCandidates(body, a.ListFeeds()[1])
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.False(t, cands[0].Verdict.Allowed)
	assert.Equal(t, classify.StageBodyText, cands[0].Verdict.Stage)
}

func TestExtractDetail(t *testing.T) {
	a := newAdapter(false)

	res, err := a.ExtractDetail(`<h1>Diese Anzeige ist nicht mehr verfügbar</h1>`, viennaFeed(a), "https://www.willhaben.at/iad/x")
	require.NoError(t, err)
	assert.True(t, res.Removed)

	body := join(privateAdvert...) + `<a href="tel:+43 664 1234567">Anrufen</a>`
	res, err = a.ExtractDetail(body, viennaFeed(a), "https://www.willhaben.at/iad/x")
	require.NoError(t, err)
	require.NotNil(t, res.Listing)
	assert.True(t, res.Verdict.Allowed)
	require.NotNil(t, res.Listing.Phone)
	assert.Equal(t, "+436641234567", *res.Listing.Phone)

	_, err = a.ExtractDetail("<html></html>", viennaFeed(a), "https://www.willhaben.at/iad/x")
	assert.Error(t, err)
}

func TestBuildPageURL(t *testing.T) {
	a := newAdapter(false)
	u, err := a.BuildPageURL(viennaFeed(a), 2)
	require.NoError(t, err)
	assert.Equal(t, "https://www.willhaben.at/iad/immobilien/eigentumswohnung/wien?rows=30&page=2", u)
	assert.Equal(t, domain.SourceWillhaben, a.Name())
	assert.Len(t, a.ListFeeds(), len(constants.WillhabenFeeds))
}

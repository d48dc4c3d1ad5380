package sources

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/domain"
)

func TestBuildFeedsAndPageURL(t *testing.T) {
	feeds := BuildFeeds(domain.SourceImmoscout, constants.ImmoscoutFeeds)
	require.Len(t, feeds, len(constants.ImmoscoutFeeds))
	assert.Equal(t, "immoscout:apartment:wien", feeds[0].Key)

	u, err := PageURL(feeds[0], 3)
	require.NoError(t, err)
	assert.Equal(t, "https://www.immobilienscout24.at/regional/wien/wien/wohnung-kaufen/seite-3", u)

	_, err = PageURL(feeds[0], 0)
	assert.Error(t, err)

	_, err = PageURL(domain.Feed{Key: "x", URLTemplate: "https://example.at/list"}, 1)
	assert.Error(t, err)
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://www.immobilienscout24.at/expose/abc123", Absolute(constants.ImmoscoutRoot, "/expose/abc123"))
	assert.Equal(t, "https://other.at/x", Absolute(constants.ImmoscoutRoot, "https://other.at/x"))
}

func TestApplyDistrict(t *testing.T) {
	l := &domain.Listing{Region: domain.RegionVienna, PostalCode: "1070"}
	require.True(t, ApplyDistrict(l, ""))
	assert.Equal(t, 7, *l.DistrictCode)
	assert.Equal(t, "Neubau", *l.DistrictName)

	l = &domain.Listing{Region: domain.RegionVienna}
	assert.False(t, ApplyDistrict(l, "irgendwo"))

	l = &domain.Listing{Region: domain.RegionLowerAustria}
	assert.True(t, ApplyDistrict(l, ""), "district only applies to vienna")
	assert.Nil(t, l.DistrictCode)
}

func TestDetailLinks(t *testing.T) {
	body := `<ul>
		<li><a href="/expose/abc123">Wohnung</a><a href="/expose/abc123?ref=x">Foto</a></li>
		<li><a href="https://www.immobilienscout24.at/expose/def456">Haus</a></li>
		<li><a href="/regional/wien">Wien</a></li>
	</ul>`
	idRe := regexp.MustCompile(`/expose/([A-Za-z0-9]+)`)

	cands, err := DetailLinks(body, "a[href*='/expose/']", idRe, constants.ImmoscoutRoot)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "https://www.immobilienscout24.at/expose/abc123", cands[0].DetailURL)
	assert.Equal(t, "https://www.immobilienscout24.at/expose/def456", cands[1].DetailURL)
	assert.False(t, cands[0].IsInline())

	assert.Equal(t, "def456", ExternalID(idRe, cands[1].DetailURL))
	assert.Empty(t, ExternalID(idRe, "https://www.immobilienscout24.at/"))
}

func TestApplyJSONCoordinates(t *testing.T) {
	l := &domain.Listing{}
	ApplyJSONCoordinates(l, "48.2082", "16.3738")
	require.NotNil(t, l.Latitude)
	assert.Equal(t, "u2edk85", l.Geohash)

	l = &domain.Listing{}
	ApplyJSONCoordinates(l, "", "16.3738")
	assert.Nil(t, l.Latitude)
}

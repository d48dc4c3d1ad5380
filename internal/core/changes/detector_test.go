package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"immo-parser-service/internal/core/domain"
)

func listing(price int, desc string, images int) domain.Listing {
	l := domain.Listing{URL: "https://www.example.at/expose/1", Price: price, Description: desc}
	for i := 0; i < images; i++ {
		l.Images = append(l.Images, "https://img.example.at/"+string(rune('a'+i))+".jpg")
	}
	return l
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		prior  domain.Listing
		next   domain.Listing
		label  string
		fields []string
	}{
		{
			name:   "price decreased",
			prior:  listing(300000, "Wohnung", 3),
			next:   listing(280000, "Wohnung", 3),
			label:  domain.LabelPriceDecreased,
			fields: []string{domain.FieldPrice},
		},
		{
			name:   "price increased",
			prior:  listing(300000, "Wohnung", 3),
			next:   listing(320000, "Wohnung", 3),
			label:  domain.LabelPriceChanged,
			fields: []string{domain.FieldPrice},
		},
		{
			name:  "whitespace only description",
			prior: listing(300000, "Wohnung mit Balkon", 3),
			next:  listing(300000, "  Wohnung mit Balkon \n", 3),
		},
		{
			name:   "description changed",
			prior:  listing(300000, "Wohnung", 3),
			next:   listing(300000, "Wohnung mit Lift", 3),
			label:  domain.LabelDescription,
			fields: []string{domain.FieldDescription},
		},
		{
			name:  "empty new description is not a change",
			prior: listing(300000, "Wohnung", 3),
			next:  listing(300000, "", 3),
		},
		{
			name:   "photos changed",
			prior:  listing(300000, "Wohnung", 3),
			next:   listing(300000, "Wohnung", 5),
			label:  domain.LabelPhotos,
			fields: []string{domain.FieldImages},
		},
		{
			name:   "text and photos",
			prior:  listing(300000, "Wohnung", 3),
			next:   listing(300000, "Neue Wohnung", 4),
			label:  domain.LabelTextAndPhotos,
			fields: []string{domain.FieldDescription, domain.FieldImages},
		},
		{
			name:   "price label takes precedence",
			prior:  listing(300000, "Wohnung", 3),
			next:   listing(290000, "Neue Wohnung", 4),
			label:  domain.LabelPriceDecreased,
			fields: []string{domain.FieldDescription, domain.FieldImages, domain.FieldPrice},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := tt.prior
			rec := Detect(&prior, tt.next)
			assert.False(t, rec.IsNew)
			assert.Equal(t, tt.label, rec.Label)
			assert.Equal(t, tt.fields, rec.ChangedFields)
		})
	}
}

func TestDetect_NewListing(t *testing.T) {
	rec := Detect(nil, listing(300000, "Wohnung", 2))
	assert.True(t, rec.IsNew)
	assert.Empty(t, rec.Label)
	assert.False(t, rec.HasChanges())
}

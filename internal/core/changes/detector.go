package changes

import (
	"sort"
	"strings"

	"immo-parser-service/internal/core/domain"
)

// Detect сравнивает свежее объявление с последней сохраненной версией.
// prior == nil означает новое объявление без метки изменения.
func Detect(prior *domain.Listing, next domain.Listing) domain.ChangeRecord {
	rec := domain.ChangeRecord{ListingURL: next.URL}
	if prior == nil {
		rec.IsNew = true
		return rec
	}

	var priceLabel string
	if prior.Price != next.Price && next.Price > 0 {
		rec.ChangedFields = append(rec.ChangedFields, domain.FieldPrice)
		rec.PreviousPrice = prior.Price
		priceLabel = domain.LabelPriceChanged
		if next.Price < prior.Price {
			priceLabel = domain.LabelPriceDecreased
		}
	}

	newDesc := strings.TrimSpace(next.Description)
	descChanged := newDesc != "" && newDesc != strings.TrimSpace(prior.Description)
	if descChanged {
		rec.ChangedFields = append(rec.ChangedFields, domain.FieldDescription)
	}

	photosChanged := len(prior.Images) != len(next.Images)
	if photosChanged {
		rec.ChangedFields = append(rec.ChangedFields, domain.FieldImages)
	}
	sort.Strings(rec.ChangedFields)

	switch {
	case priceLabel != "":
		rec.Label = priceLabel
	case descChanged && photosChanged:
		rec.Label = domain.LabelTextAndPhotos
	case descChanged:
		rec.Label = domain.LabelDescription
	case photosChanged:
		rec.Label = domain.LabelPhotos
	}
	return rec
}

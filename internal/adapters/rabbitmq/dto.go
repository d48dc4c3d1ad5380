package rabbitmq

import (
	"time"

	"immo-parser-service/internal/core/domain"
)

// ListingFoundEventDTO - тело события immo.listings.found
type ListingFoundEventDTO struct {
	CycleID string     `json:"cycle_id"`
	Mode    string     `json:"mode"`
	Listing ListingDTO `json:"listing"`
	Change  ChangeDTO  `json:"change"`
}

type ListingDTO struct {
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
	FeedKey    string `json:"feed_key"`
	Title      string `json:"title"`
	Price      int    `json:"price"`

	AreaM2      *float64 `json:"area_m2"`
	EurPerM2    *int     `json:"eur_per_m2"`
	Location    string   `json:"location"`
	PostalCode  string   `json:"postal_code"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Phone       *string  `json:"phone"`

	DistrictCode *int     `json:"district_code"`
	DistrictName *string  `json:"district_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Geohash      string   `json:"geohash"`

	Category             string `json:"category"`
	Region               string `json:"region"`
	IsPrivate            bool   `json:"is_private"`
	ClassificationStage  int    `json:"classification_stage"`
	ClassificationReason string `json:"classification_reason"`

	PublishedAt   *time.Time `json:"published_at"`
	LastChangedAt *time.Time `json:"last_changed_at"`
	FirstSeenAt   *time.Time `json:"first_seen_at"`
}

type ChangeDTO struct {
	IsNew         bool     `json:"is_new"`
	Label         string   `json:"label"`
	ChangedFields []string `json:"changed_fields"`
	PreviousPrice int      `json:"previous_price,omitempty"`
}

// PhoneFoundEventDTO - тело события immo.phones.found
type PhoneFoundEventDTO struct {
	URL   string `json:"url"`
	Phone string `json:"phone"`
}

func toListingFoundEventDTO(event domain.ListingEvent) ListingFoundEventDTO {
	l := event.Listing
	images := l.Images
	if images == nil {
		images = []string{}
	}
	fields := event.Change.ChangedFields
	if fields == nil {
		fields = []string{}
	}
	return ListingFoundEventDTO{
		CycleID: event.CycleID.String(),
		Mode:    string(event.Mode),
		Listing: ListingDTO{
			Source:               string(l.Source),
			ExternalID:           l.ExternalID,
			URL:                  l.URL,
			FeedKey:              l.FeedKey,
			Title:                l.Title,
			Price:                l.Price,
			AreaM2:               l.AreaM2,
			EurPerM2:             l.EurPerM2,
			Location:             l.Location,
			PostalCode:           l.PostalCode,
			Description:          l.Description,
			Images:               images,
			Phone:                l.Phone,
			DistrictCode:         l.DistrictCode,
			DistrictName:         l.DistrictName,
			Latitude:             l.Latitude,
			Longitude:            l.Longitude,
			Geohash:              l.Geohash,
			Category:             string(l.Category),
			Region:               string(l.Region),
			IsPrivate:            l.IsPrivate,
			ClassificationStage:  l.ClassificationStage,
			ClassificationReason: l.ClassificationReason,
			PublishedAt:          l.PublishedAt,
			LastChangedAt:        l.LastChangedAt,
			FirstSeenAt:          l.FirstSeenAt,
		},
		Change: ChangeDTO{
			IsNew:         event.Change.IsNew,
			Label:         event.Change.Label,
			ChangedFields: fields,
			PreviousPrice: event.Change.PreviousPrice,
		},
	}
}

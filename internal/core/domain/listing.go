package domain

import (
	"net/url"
	"strings"
	"time"
)

// Source - маркетплейс, с которого получено объявление
type Source string

const (
	SourceWillhaben   Source = "willhaben"
	SourceImmoscout   Source = "immoscout"
	SourceDerStandard Source = "derstandard"
)

// Category - тип объекта недвижимости
type Category string

const (
	CategoryApartment Category = "apartment"
	CategoryHouse     Category = "house"
	CategoryLand      Category = "land"
)

// Region - регион, по которому собирается фид
type Region string

const (
	RegionVienna       Region = "wien"
	RegionLowerAustria Region = "niederoesterreich"
)

// Listing - нормализованное объявление, которое уходит в sink.
// Натуральный ключ - нормализованный URL.
type Listing struct {
	Source     Source
	ExternalID string
	URL        string
	FeedKey    string

	Title       string
	Price       int
	AreaM2      *float64
	EurPerM2    *int
	Location    string
	PostalCode  string
	Description string
	Images      []string
	Phone       *string

	DistrictCode *int
	DistrictName *string

	Latitude  *float64
	Longitude *float64
	Geohash   string

	Category Category
	Region   Region

	IsPrivate            bool
	ClassificationReason string
	ClassificationStage  int

	PublishedAt   *time.Time
	LastChangedAt *time.Time
	FirstSeenAt   *time.Time
}

// NormalizeURL приводит URL объявления к виду натурального ключа:
// схема и хост в нижнем регистре, без query, fragment и завершающего слэша.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

// ListingRepository сохраняет объявления (UPSERT по url) и отдает прошлую версию
// для детектора изменений.
type ListingRepository struct {
	db  DB
	now func() time.Time
}

func NewListingRepository(db DB) (*ListingRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres listing repository: db cannot be nil")
	}
	return &ListingRepository{db: db, now: time.Now}, nil
}

const upsertListingSQL = `
INSERT INTO listings (
    url, source, external_id, feed_key, title, price, area_m2, eur_per_m2,
    location, postal_code, description, images, phone, district_code, district_name,
    latitude, longitude, geohash, category, region, classification_stage,
    classification_reason, published_at, last_changed_at, first_seen_at, last_seen_at,
    last_change_label
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8,
    $9, $10, $11, $12, $13, $14, $15,
    $16, $17, $18, $19, $20, $21,
    $22, $23, $24, $25, $26,
    $27
)
ON CONFLICT (url) DO UPDATE SET
    title = EXCLUDED.title,
    price = EXCLUDED.price,
    area_m2 = EXCLUDED.area_m2,
    eur_per_m2 = EXCLUDED.eur_per_m2,
    location = EXCLUDED.location,
    postal_code = EXCLUDED.postal_code,
    description = EXCLUDED.description,
    images = EXCLUDED.images,
    phone = COALESCE(EXCLUDED.phone, listings.phone),
    district_code = EXCLUDED.district_code,
    district_name = EXCLUDED.district_name,
    latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    geohash = EXCLUDED.geohash,
    classification_stage = EXCLUDED.classification_stage,
    classification_reason = EXCLUDED.classification_reason,
    published_at = COALESCE(EXCLUDED.published_at, listings.published_at),
    last_changed_at = EXCLUDED.last_changed_at,
    last_seen_at = EXCLUDED.last_seen_at,
    last_change_label = CASE WHEN EXCLUDED.last_change_label = '' THEN listings.last_change_label ELSE EXCLUDED.last_change_label END
`

const touchListingSQL = `UPDATE listings SET last_seen_at = $2 WHERE url = $1`

// OnListingFound реализует port.ListingSinkPort.
// Без изменений обновляется только last_seen_at.
func (r *ListingRepository) OnListingFound(ctx context.Context, event domain.ListingEvent) error {
	l := event.Listing
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ListingRepository",
		"url":       l.URL,
	})
	now := r.now().UTC()

	if !event.Change.IsNew && !event.Change.HasChanges() {
		if _, err := r.db.Exec(ctx, touchListingSQL, l.URL, now); err != nil {
			logger.Error("Error touching listing", err, nil)
			return fmt.Errorf("ListingRepository: touch '%s': %w", l.URL, err)
		}
		return nil
	}

	firstSeen := now
	if l.FirstSeenAt != nil {
		firstSeen = *l.FirstSeenAt
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	_, err := r.db.Exec(ctx, upsertListingSQL,
		l.URL, string(l.Source), l.ExternalID, l.FeedKey, l.Title, l.Price, l.AreaM2, l.EurPerM2,
		l.Location, l.PostalCode, l.Description, images, l.Phone, l.DistrictCode, l.DistrictName,
		l.Latitude, l.Longitude, l.Geohash, string(l.Category), string(l.Region), l.ClassificationStage,
		l.ClassificationReason, l.PublishedAt, l.LastChangedAt, firstSeen, now,
		event.Change.Label,
	)
	if err != nil {
		logger.Error("Error saving listing", err, nil)
		return fmt.Errorf("ListingRepository: save '%s': %w", l.URL, err)
	}
	logger.Debug("Listing saved", port.Fields{"is_new": event.Change.IsNew, "label": event.Change.Label})
	return nil
}

const lastVersionSQL = `
SELECT source, external_id, feed_key, title, price, area_m2, eur_per_m2, description, images, phone, first_seen_at
FROM listings WHERE url = $1`

// LastVersion реализует port.ListingHistoryPort; nil без ошибки - объявление новое
func (r *ListingRepository) LastVersion(ctx context.Context, url string) (*domain.Listing, error) {
	var (
		l         = domain.Listing{URL: url}
		source    string
		firstSeen time.Time
	)
	err := r.db.QueryRow(ctx, lastVersionSQL, url).Scan(
		&source, &l.ExternalID, &l.FeedKey, &l.Title, &l.Price, &l.AreaM2, &l.EurPerM2,
		&l.Description, &l.Images, &l.Phone, &firstSeen,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ListingRepository: load '%s': %w", url, err)
	}
	l.Source = domain.Source(source)
	l.FirstSeenAt = &firstSeen
	return &l, nil
}

const recentListingsSQL = `
SELECT url, source, external_id, feed_key, title, price, area_m2, eur_per_m2,
       location, postal_code, description, images, phone, district_code, district_name,
       latitude, longitude, geohash, category, region, classification_stage,
       classification_reason, published_at, last_changed_at, first_seen_at
FROM listings ORDER BY last_seen_at DESC LIMIT $1`

// RecentListings реализует port.ListingReaderPort
func (r *ListingRepository) RecentListings(ctx context.Context, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("ListingRepository: limit must be positive, got %d", limit)
	}
	rows, err := r.db.Query(ctx, recentListingsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository: query recent: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Listing, 0, limit)
	for rows.Next() {
		var (
			l                        domain.Listing
			source, category, region string
			firstSeen                time.Time
		)
		err := rows.Scan(
			&l.URL, &source, &l.ExternalID, &l.FeedKey, &l.Title, &l.Price, &l.AreaM2, &l.EurPerM2,
			&l.Location, &l.PostalCode, &l.Description, &l.Images, &l.Phone, &l.DistrictCode, &l.DistrictName,
			&l.Latitude, &l.Longitude, &l.Geohash, &category, &region, &l.ClassificationStage,
			&l.ClassificationReason, &l.PublishedAt, &l.LastChangedAt, &firstSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("ListingRepository: scan recent: %w", err)
		}
		l.Source = domain.Source(source)
		l.Category = domain.Category(category)
		l.Region = domain.Region(region)
		l.FirstSeenAt = &firstSeen
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListingRepository: read recent: %w", err)
	}
	return out, nil
}

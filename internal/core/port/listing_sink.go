package port

import (
	"context"
	"immo-parser-service/internal/core/domain"
)

// ListingSinkPort принимает нормализованные объявления.
// domain.ErrSinkRejected не считается фатальной ошибкой.
type ListingSinkPort interface {
	OnListingFound(ctx context.Context, event domain.ListingEvent) error
}

// ListingHistoryPort отдает последнюю сохраненную версию объявления (или nil)
type ListingHistoryPort interface {
	LastVersion(ctx context.Context, url string) (*domain.Listing, error)
}

// PhoneSinkPort получает найденные телефоны отдельно от объявления
type PhoneSinkPort interface {
	OnPhoneFound(ctx context.Context, url string, phone string)
}

// ListingReaderPort отдает последние сохраненные объявления, свежие первыми
type ListingReaderPort interface {
	RecentListings(ctx context.Context, limit int) ([]domain.Listing, error)
}

package memory

import (
	"context"
	"slices"
	"sync"

	"immo-parser-service/internal/core/domain"
)

// ListingStore хранит последнюю версию каждого объявления по url.
// Реализует ListingSinkPort, ListingHistoryPort и ListingReaderPort, когда база не настроена.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
	order    []string
	// seen - номер последнего OnListingFound по url
	seen map[string]uint64
	seq  uint64
}

func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]domain.Listing), seen: make(map[string]uint64)}
}

func (s *ListingStore) OnListingFound(_ context.Context, event domain.ListingEvent) error {
	l := event.Listing
	l.Images = append([]string(nil), l.Images...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[l.URL]; !ok {
		s.order = append(s.order, l.URL)
	}
	s.listings[l.URL] = l
	s.seq++
	s.seen[l.URL] = s.seq
	return nil
}

// RecentListings - до limit объявлений, последние увиденные первыми
func (s *ListingStore) RecentListings(_ context.Context, limit int) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls := slices.Clone(s.order)
	slices.SortFunc(urls, func(a, b string) int {
		switch {
		case s.seen[a] > s.seen[b]:
			return -1
		case s.seen[a] < s.seen[b]:
			return 1
		}
		return 0
	})
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	out := make([]domain.Listing, 0, len(urls))
	for _, url := range urls {
		l := s.listings[url]
		l.Images = append([]string(nil), l.Images...)
		out = append(out, l)
	}
	return out, nil
}

func (s *ListingStore) LastVersion(_ context.Context, url string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[url]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// Listings - все объявления в порядке первого появления
func (s *ListingStore) Listings() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Listing, 0, len(s.order))
	for _, url := range s.order {
		out = append(out, s.listings[url])
	}
	return out
}

func (s *ListingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

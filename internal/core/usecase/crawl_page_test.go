package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/core/domain"
)

func TestCrawlPage_DetailCandidates(t *testing.T) {
	fetcher := newFakeFetcher()
	queue := &fakeQueue{}
	clock := newFakeClock()
	uc := NewCrawlPageUseCase(fetcher, queue, clock, CrawlConfig{Jitter: DefaultJitter()})

	adapter := newFakeAdapter("i:apt")
	feed := adapter.ListFeeds()[0]
	fetcher.bodies["https://fake.test/i:apt?page=1"] = "detail:1, detail:2, detail:3"
	fetcher.bodies["https://fake.test/detail/1"] = "private"
	fetcher.bodies["https://fake.test/detail/2"] = "commercial"
	fetcher.bodies["https://fake.test/detail/3"] = "removed"

	cycleID := uuid.New()
	res, err := uc.Execute(context.Background(), adapter, feed, 1, CycleContext{ID: cycleID, Mode: domain.ModeQuick})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Candidates)
	assert.Equal(t, 1, res.Stats.ListingsEmitted)
	assert.Equal(t, 1, res.Stats.Blocked)
	assert.Equal(t, 1, res.Stats.Skipped)

	events := queue.Events()
	require.Len(t, events, 1)
	l := events[0].Listing
	assert.True(t, l.IsPrivate)
	assert.Equal(t, 3, l.ClassificationStage)
	assert.Equal(t, "i:apt", l.FeedKey)
	assert.Equal(t, domain.CategoryApartment, l.Category)
	require.NotNil(t, l.EurPerM2)
	assert.Equal(t, 4286, *l.EurPerM2)
	assert.Equal(t, cycleID, events[0].CycleID)

	// пауза только между детальными страницами
	assert.Len(t, clock.Sleeps(), 2)
}

func TestCrawlPage_ImplausibleListingNotEmitted(t *testing.T) {
	fetcher := newFakeFetcher()
	queue := &fakeQueue{}
	uc := NewCrawlPageUseCase(fetcher, queue, newFakeClock(), CrawlConfig{})

	adapter := &implausibleAdapter{fakeAdapter: newFakeAdapter("w:house")}
	feed := adapter.ListFeeds()[0]
	feed.Category = domain.CategoryHouse
	fetcher.bodies["https://fake.test/w:house?page=1"] = "inline:1"

	res, err := uc.Execute(context.Background(), adapter, feed, 1, CycleContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.ListingsEmitted)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Empty(t, queue.Events())
}

// implausibleAdapter отдает дом площадью 15 m²
type implausibleAdapter struct {
	*fakeAdapter
}

func (a *implausibleAdapter) ExtractCandidates(body string, feed domain.Feed) ([]domain.Candidate, error) {
	cands, err := a.fakeAdapter.ExtractCandidates(body, feed)
	for _, c := range cands {
		if c.Listing != nil {
			area := 15.0
			c.Listing.AreaM2 = &area
			c.Listing.Category = domain.CategoryHouse
		}
	}
	return cands, err
}

func TestCrawlPage_PageFetchErrorReturned(t *testing.T) {
	fetcher := newFakeFetcher()
	uc := NewCrawlPageUseCase(fetcher, &fakeQueue{}, newFakeClock(), CrawlConfig{})
	adapter := newFakeAdapter("w:apt")
	fetcher.errs["https://fake.test/w:apt?page=1"] = &domain.StatusError{Code: 503}

	_, err := uc.Execute(context.Background(), adapter, adapter.ListFeeds()[0], 1, CycleContext{})
	require.Error(t, err)
	var se *domain.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.Code)
}

package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// fakeFetcher отдает тело по URL; hook вызывается перед каждым ответом
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  []string
	hook   func(url string)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req port.FetchRequest) (*port.FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	hook := f.hook
	body, ok := f.bodies[req.URL]
	err := f.errs[req.URL]
	f.mu.Unlock()

	if hook != nil {
		hook(req.URL)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		body = ""
	}
	return &port.FetchResponse{Body: body, Status: 200}, nil
}

func (f *fakeFetcher) setHook(hook func(url string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeAdapter: тело страницы выдачи - список токенов через запятую.
// "inline:<id>" - объявление частника прямо в выдаче, "blocked:<id>" - коммерческое,
// "detail:<id>" - ссылка на детальную страницу.
type fakeAdapter struct {
	feeds []domain.Feed
}

func newFakeAdapter(keys ...string) *fakeAdapter {
	a := &fakeAdapter{}
	for _, k := range keys {
		a.feeds = append(a.feeds, domain.Feed{
			Key:         k,
			Source:      domain.SourceWillhaben,
			Category:    domain.CategoryApartment,
			Region:      domain.RegionVienna,
			URLTemplate: "https://fake.test/" + k + "?page={page}",
		})
	}
	return a
}

func (a *fakeAdapter) Name() domain.Source      { return domain.SourceWillhaben }
func (a *fakeAdapter) ListFeeds() []domain.Feed { return a.feeds }

func (a *fakeAdapter) BuildPageURL(feed domain.Feed, page int) (string, error) {
	return strings.ReplaceAll(feed.URLTemplate, "{page}", strconv.Itoa(page)), nil
}

func (a *fakeAdapter) ExtractCandidates(body string, feed domain.Feed) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, tok := range strings.Split(body, ",") {
		tok = strings.TrimSpace(tok)
		kind, id, found := strings.Cut(tok, ":")
		if !found {
			continue
		}
		switch kind {
		case "inline":
			v := domain.Verdict{Allowed: true, Stage: 3, Reason: "private"}
			out = append(out, domain.Candidate{Listing: fakeListing(id), Verdict: &v})
		case "blocked":
			v := domain.Verdict{Allowed: false, Stage: 1, Reason: "commercial"}
			out = append(out, domain.Candidate{Listing: fakeListing(id), Verdict: &v})
		case "detail":
			out = append(out, domain.Candidate{DetailURL: "https://fake.test/detail/" + id})
		}
	}
	return out, nil
}

func (a *fakeAdapter) ExtractDetail(body string, feed domain.Feed, detailURL string) (domain.DetailResult, error) {
	if body == "removed" {
		return domain.DetailResult{Removed: true, Reason: "removed"}, nil
	}
	id := detailURL[strings.LastIndex(detailURL, "/")+1:]
	v := domain.Verdict{Allowed: body == "private", Stage: 3, Reason: body}
	return domain.DetailResult{Listing: fakeListing(id), Verdict: v}, nil
}

func fakeListing(id string) *domain.Listing {
	area := 70.0
	return &domain.Listing{
		ExternalID: id,
		URL:        "https://fake.test/listing/" + id,
		Price:      300_000,
		AreaM2:     &area,
	}
}

type cursorCall struct {
	Key  string
	Page int
}

type fakeCursorStore struct {
	mu    sync.Mutex
	pages map[string]int
	sets  []cursorCall
}

func newFakeCursorStore() *fakeCursorStore {
	return &fakeCursorStore{pages: map[string]int{}}
}

func (s *fakeCursorStore) GetNextPage(ctx context.Context, key string, def int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pages[key]; ok {
		return p, nil
	}
	return def, nil
}

func (s *fakeCursorStore) SetNextPage(ctx context.Context, key string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[key] = page
	s.sets = append(s.sets, cursorCall{key, page})
	return nil
}

func (s *fakeCursorStore) Sets() []cursorCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cursorCall(nil), s.sets...)
}

type fakeQueue struct {
	mu     sync.Mutex
	events []domain.ListingEvent
}

func (q *fakeQueue) Submit(ctx context.Context, e domain.ListingEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
	return nil
}

func (q *fakeQueue) Events() []domain.ListingEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.ListingEvent(nil), q.events...)
}

type fakeSink struct {
	mu     sync.Mutex
	events []domain.ListingEvent
	reject map[string]bool
}

func (s *fakeSink) OnListingFound(ctx context.Context, e domain.ListingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject[e.Listing.URL] {
		return fmt.Errorf("duplicate: %w", domain.ErrSinkRejected)
	}
	s.events = append(s.events, e)
	return nil
}

type fakeHistory map[string]*domain.Listing

func (h fakeHistory) LastVersion(ctx context.Context, url string) (*domain.Listing, error) {
	return h[url], nil
}

type fakePhones struct {
	mu     sync.Mutex
	phones map[string]string
}

func (p *fakePhones) OnPhoneFound(ctx context.Context, url, phone string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phones == nil {
		p.phones = map[string]string{}
	}
	p.phones[url] = phone
}

type fakeCron struct {
	specs   []string
	funcs   []func()
	started bool
}

func (c *fakeCron) AddFunc(spec string, cmd func()) error {
	c.specs = append(c.specs, spec)
	c.funcs = append(c.funcs, cmd)
	return nil
}
func (c *fakeCron) Start() { c.started = true }
func (c *fakeCron) Stop()  {}

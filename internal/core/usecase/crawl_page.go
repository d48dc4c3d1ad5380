package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

// CrawlConfig - таймауты запросов обхода
type CrawlConfig struct {
	PageTimeout   time.Duration
	DetailTimeout time.Duration
	Jitter        Jitter
}

// PageResult - итог разбора одной страницы выдачи
type PageResult struct {
	Candidates int
	Stats      domain.CycleStats
}

// CrawlPageUseCase загружает страницу выдачи, при необходимости детальные страницы,
// и отправляет прошедшие классификацию объявления в очередь.
type CrawlPageUseCase struct {
	fetcher port.FetcherPort
	queue   port.ListingQueuePort
	clock   port.ClockPort
	cfg     CrawlConfig
}

// NewCrawlPageUseCase создает новый экземпляр CrawlPageUseCase
func NewCrawlPageUseCase(fetcher port.FetcherPort, queue port.ListingQueuePort, clock port.ClockPort, cfg CrawlConfig) *CrawlPageUseCase {
	return &CrawlPageUseCase{
		fetcher: fetcher,
		queue:   queue,
		clock:   clock,
		cfg:     cfg,
	}
}

// CycleContext - данные цикла, которые нужны при обходе страницы
type CycleContext struct {
	ID   uuid.UUID
	Mode domain.ScrapeMode
	// Running проверяется между детальными страницами
	Running func() bool
}

// Execute обходит одну страницу фида.
// Ошибка загрузки самой страницы возвращается; ошибки отдельных объявлений только логируются.
func (uc *CrawlPageUseCase) Execute(ctx context.Context, adapter port.SourceAdapter, feed domain.Feed, page int, cycle CycleContext) (PageResult, error) {
	pageLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "CrawlPage",
		"feed":     feed.Key,
		"page":     page,
	})

	var res PageResult

	pageURL, err := adapter.BuildPageURL(feed, page)
	if err != nil {
		return res, fmt.Errorf("use case: failed to build page url for feed %s: %w", feed.Key, err)
	}

	resp, err := uc.fetcher.Fetch(ctx, port.FetchRequest{URL: pageURL, Timeout: uc.cfg.PageTimeout})
	if err != nil {
		return res, fmt.Errorf("use case: error fetching page %d of feed %s: %w", page, feed.Key, err)
	}
	res.Stats.PagesVisited = 1

	candidates, err := adapter.ExtractCandidates(resp.Body, feed)
	if err != nil {
		// страница не разобралась: считаем ее пустой
		pageLogger.Warn("Could not extract candidates from page", port.Fields{"error": err.Error(), "url": pageURL})
		return res, nil
	}
	res.Candidates = len(candidates)
	res.Stats.Candidates = len(candidates)
	pageLogger.Debug("Candidates extracted", port.Fields{"count": len(candidates)})

	for i, cand := range candidates {
		if cycle.Running != nil && !cycle.Running() {
			pageLogger.Info("Stop requested, leaving page early", port.Fields{"processed": i})
			break
		}

		var (
			listing *domain.Listing
			verdict domain.Verdict
		)

		if cand.IsInline() {
			listing, verdict = cand.Listing, *cand.Verdict
		} else {
			if i > 0 {
				if err := uc.clock.Sleep(ctx, uc.cfg.Jitter.BetweenDetails.Pick()); err != nil {
					return res, err
				}
			}
			detail, detailErr := uc.fetchDetail(ctx, adapter, feed, pageURL, cand.DetailURL)
			if detailErr != nil {
				if domain.IsRateLimited(detailErr) || errors.Is(detailErr, context.Canceled) {
					return res, detailErr
				}
				pageLogger.Warn("Skipping candidate, detail fetch failed", port.Fields{"url": cand.DetailURL, "error": detailErr.Error()})
				res.Stats.Skipped++
				continue
			}
			if detail.Removed {
				pageLogger.Debug("Listing removed, skipping", port.Fields{"url": cand.DetailURL})
				res.Stats.Skipped++
				continue
			}
			listing, verdict = detail.Listing, detail.Verdict
		}

		if !verdict.Allowed {
			res.Stats.Blocked++
			pageLogger.Debug("Listing blocked by classification", port.Fields{
				"url":    candidateURL(cand),
				"stage":  verdict.Stage,
				"reason": verdict.Reason,
			})
			continue
		}
		if listing == nil {
			res.Stats.Skipped++
			continue
		}

		listing.IsPrivate = true
		listing.ClassificationStage = verdict.Stage
		listing.ClassificationReason = verdict.Reason
		listing.FeedKey = feed.Key
		if listing.Category == "" {
			listing.Category = feed.Category
		}
		if listing.Region == "" {
			listing.Region = feed.Region
		}
		if listing.Source == "" {
			listing.Source = adapter.Name()
		}

		if err := listing.Finalize(); err != nil {
			pageLogger.Debug("Listing failed plausibility checks", port.Fields{"url": listing.URL, "reason": err.Error()})
			res.Stats.Skipped++
			continue
		}

		event := domain.ListingEvent{Listing: *listing, CycleID: cycle.ID, Mode: cycle.Mode}
		if err := uc.queue.Submit(ctx, event); err != nil {
			return res, fmt.Errorf("use case: failed to submit listing %s: %w", listing.URL, err)
		}
		res.Stats.ListingsEmitted++
	}

	return res, nil
}

func (uc *CrawlPageUseCase) fetchDetail(ctx context.Context, adapter port.SourceAdapter, feed domain.Feed, referer, detailURL string) (domain.DetailResult, error) {
	resp, err := uc.fetcher.Fetch(ctx, port.FetchRequest{
		URL:     detailURL,
		Headers: map[string]string{"Referer": referer},
		Timeout: uc.cfg.DetailTimeout,
	})
	if err != nil {
		return domain.DetailResult{}, err
	}
	detail, err := adapter.ExtractDetail(resp.Body, feed, detailURL)
	if err != nil {
		return domain.DetailResult{}, fmt.Errorf("%s adapter: failed to extract detail: %w", adapter.Name(), err)
	}
	return detail, nil
}

func candidateURL(c domain.Candidate) string {
	if c.Listing != nil {
		return c.Listing.URL
	}
	return c.DetailURL
}

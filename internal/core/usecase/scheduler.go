package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

// SchedulerState - состояние планировщика
type SchedulerState string

const (
	StateIdle         SchedulerState = "idle"
	StateQuickRunning SchedulerState = "quick_running"
	StateFullRunning  SchedulerState = "full_running"
)

// emptyPagesLimit - после стольких пустых страниц подряд фид считается пройденным
const emptyPagesLimit = 3

// SchedulerConfig - параметры расписания
type SchedulerConfig struct {
	QuickInterval   time.Duration
	FullInterval    time.Duration
	FullMaxPages    int
	StartupBackoff  time.Duration
	StartupAttempts int
	RateLimitPause  time.Duration
	Jitter          Jitter
}

// Status - снимок состояния планировщика
type Status struct {
	State          SchedulerState
	IsRunning      bool
	CurrentCycle   *domain.ScrapeCycle
	CyclesFinished int
	TotalFound     int
	LastStats      domain.CycleStats
	LastFinishedAt *time.Time
}

// Scheduler запускает быстрые проверки и полные обходы, не допуская их пересечения
type Scheduler struct {
	adapters []port.SourceAdapter
	crawler  *CrawlPageUseCase
	cursors  port.CursorStorePort
	cron     port.CronPort
	clock    port.ClockPort
	cfg      SchedulerConfig

	mu             sync.Mutex
	state          SchedulerState
	cycle          *domain.ScrapeCycle
	cycleNumber    int
	cyclesFinished int
	totalFound     int
	lastStats      domain.CycleStats
	lastFinishedAt *time.Time

	// running сбрасывается Stop и проверяется между единицами обхода
	running atomic.Bool
	// closed запрещает новые циклы после Close; меняется под mu
	closed bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler создает планировщик
func NewScheduler(
	adapters []port.SourceAdapter,
	crawler *CrawlPageUseCase,
	cursors port.CursorStorePort,
	cron port.CronPort,
	clock port.ClockPort,
	cfg SchedulerConfig,
) (*Scheduler, error) {
	if len(adapters) == 0 {
		return nil, errors.New("scheduler: no source adapters configured")
	}
	feeds := 0
	for _, a := range adapters {
		feeds += len(a.ListFeeds())
	}
	if feeds == 0 {
		return nil, errors.New("scheduler: adapters expose no feeds")
	}
	if cursors == nil {
		return nil, errors.New("scheduler: cursor store is required")
	}
	if cfg.FullMaxPages <= 0 {
		cfg.FullMaxPages = 1
	}
	if cfg.StartupAttempts <= 0 {
		cfg.StartupAttempts = 1
	}
	return &Scheduler{
		adapters: adapters,
		crawler:  crawler,
		cursors:  cursors,
		cron:     cron,
		clock:    clock,
		cfg:      cfg,
		state:    StateIdle,
	}, nil
}

// Start регистрирует таймеры и запускает первый прогон с повторами в фоне
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "scheduler"})
	s.baseCtx = contextkeys.ContextWithLogger(s.baseCtx, logger)

	if s.cron != nil {
		if err := s.cron.AddFunc(everySpec(s.cfg.QuickInterval), func() { s.TriggerQuick() }); err != nil {
			return fmt.Errorf("scheduler: failed to register quick check timer: %w", err)
		}
		if err := s.cron.AddFunc(everySpec(s.cfg.FullInterval), func() { s.TriggerFull() }); err != nil {
			return fmt.Errorf("scheduler: failed to register full scrape timer: %w", err)
		}
		s.cron.Start()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.startupRun(s.baseCtx)
	}()

	logger.Info("Scheduler started", port.Fields{
		"quick_interval": s.cfg.QuickInterval.String(),
		"full_interval":  s.cfg.FullInterval.String(),
		"adapters":       len(s.adapters),
	})
	return nil
}

// Close останавливает таймеры и ждет текущий цикл, в том числе запущенный таймером
func (s *Scheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func everySpec(d time.Duration) string {
	return "@every " + d.String()
}

// startupRun - первый прогон с линейным backoff; после исчерпания попыток остаются таймеры
func (s *Scheduler) startupRun(ctx context.Context) {
	logger := contextkeys.LoggerFromContext(ctx)
	for attempt := 1; attempt <= s.cfg.StartupAttempts; attempt++ {
		_, ran, err := s.runCycle(ctx, domain.ModeQuick)
		if !ran {
			logger.Info("Startup run skipped, another cycle is in progress", nil)
			return
		}
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if attempt == s.cfg.StartupAttempts {
			logger.Error("Startup run failed, relying on recurring timers", err, port.Fields{"attempts": attempt})
			return
		}
		wait := s.cfg.StartupBackoff * time.Duration(attempt)
		logger.Warn("Startup run failed, retrying", port.Fields{"attempt": attempt, "backoff": wait.String(), "error": err.Error()})
		if err := s.clock.Sleep(ctx, wait); err != nil {
			return
		}
	}
}

// TriggerQuick запускает быструю проверку; false, если уже идет цикл
func (s *Scheduler) TriggerQuick() bool {
	return s.trigger(domain.ModeQuick)
}

// TriggerFull запускает полный обход; false, если уже идет цикл
func (s *Scheduler) TriggerFull() bool {
	return s.trigger(domain.ModeFull)
}

// track учитывает цикл в wg, чтобы Close его дождался; false после Close
func (s *Scheduler) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) trigger(mode domain.ScrapeMode) bool {
	if !s.track() {
		return false
	}
	defer s.wg.Done()
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	_, ran, err := s.runCycle(ctx, mode)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Scrape cycle finished with errors", err, port.Fields{"mode": string(mode)})
	}
	return ran
}

// TriggerAsync делает переход в Running синхронно, а сам цикл выполняет в фоне
func (s *Scheduler) TriggerAsync(mode domain.ScrapeMode) bool {
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.track() {
		return false
	}
	cycle, ok := s.begin(ctx, mode)
	if !ok {
		s.wg.Done()
		return false
	}
	go func() {
		defer s.wg.Done()
		if _, err := s.execute(ctx, cycle); err != nil {
			contextkeys.LoggerFromContext(ctx).Error("Scrape cycle finished with errors", err, port.Fields{"mode": string(mode)})
		}
	}()
	return true
}

// Stop просит текущий цикл завершиться на ближайшей точке проверки
func (s *Scheduler) Stop() {
	if s.running.CompareAndSwap(true, false) {
		contextkeys.LoggerFromContext(s.ctxOrBackground()).Info("Stop requested", nil)
	}
}

func (s *Scheduler) ctxOrBackground() context.Context {
	if s.baseCtx != nil {
		return s.baseCtx
	}
	return context.Background()
}

// Status возвращает снимок состояния
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		State:          s.state,
		IsRunning:      s.state != StateIdle,
		CyclesFinished: s.cyclesFinished,
		TotalFound:     s.totalFound,
		LastStats:      s.lastStats,
		LastFinishedAt: s.lastFinishedAt,
	}
	if s.cycle != nil {
		c := *s.cycle
		st.CurrentCycle = &c
	}
	return st
}

// begin - единственный переход Idle -> Running; при пересечении ничего не делает
func (s *Scheduler) begin(ctx context.Context, mode domain.ScrapeMode) (domain.ScrapeCycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := contextkeys.LoggerFromContext(ctx)
	if s.state != StateIdle {
		logger.Info("Trigger ignored, another cycle is running", port.Fields{
			"requested": string(mode),
			"state":     string(s.state),
		})
		return domain.ScrapeCycle{}, false
	}
	s.cycleNumber++
	cycle := domain.ScrapeCycle{
		ID:        uuid.New(),
		Mode:      mode,
		Number:    s.cycleNumber,
		StartedAt: s.clock.Now().UTC(),
		Running:   true,
	}
	s.cycle = &cycle
	if mode == domain.ModeFull {
		s.state = StateFullRunning
	} else {
		s.state = StateQuickRunning
	}
	s.running.Store(true)
	return cycle, true
}

func (s *Scheduler) finish(stats domain.CycleStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now().UTC()
	s.state = StateIdle
	s.cycle = nil
	s.cyclesFinished++
	s.totalFound += stats.ListingsEmitted
	s.lastStats = stats
	s.lastFinishedAt = &now
	s.running.Store(false)
}

func (s *Scheduler) runCycle(ctx context.Context, mode domain.ScrapeMode) (domain.CycleStats, bool, error) {
	cycle, ok := s.begin(ctx, mode)
	if !ok {
		return domain.CycleStats{}, false, nil
	}
	stats, err := s.execute(ctx, cycle)
	return stats, true, err
}

// execute обходит фиды в фиксированном порядке.
// Ошибка цикла возвращается, только если ни одна страница не загрузилась.
func (s *Scheduler) execute(ctx context.Context, cycle domain.ScrapeCycle) (stats domain.CycleStats, err error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"cycle_id": cycle.ID.String(),
		"mode":     string(cycle.Mode),
		"cycle":    cycle.Number,
	})
	ctx = contextkeys.ContextWithLogger(ctx, logger)
	defer func() { s.finish(stats) }()

	logger.Info("Scrape cycle started", nil)
	cc := CycleContext{ID: cycle.ID, Mode: cycle.Mode, Running: s.running.Load}

	var errs []error
	firstFeed := true
	for _, adapter := range s.adapters {
		for _, feed := range adapter.ListFeeds() {
			if !s.running.Load() || ctx.Err() != nil {
				logger.Info("Scrape cycle stopped", nil)
				return stats, nil
			}
			if !firstFeed {
				if sleepErr := s.clock.Sleep(ctx, s.cfg.Jitter.BetweenFeeds.Pick()); sleepErr != nil {
					return stats, nil
				}
			}
			firstFeed = false

			var feedStats domain.CycleStats
			var feedErr error
			if cycle.Mode == domain.ModeFull {
				feedStats, feedErr = s.fullFeed(ctx, adapter, feed, cc)
			} else {
				feedStats, feedErr = s.quickFeed(ctx, adapter, feed, cc)
			}
			feedStats.FeedsVisited = 1
			stats.Add(feedStats)
			if feedErr != nil {
				stats.Errors++
				errs = append(errs, feedErr)
				logger.Warn("Feed finished with error", port.Fields{"feed": feed.Key, "error": feedErr.Error()})
				if domain.IsRateLimited(feedErr) {
					logger.Warn("Source is rate limiting, pausing", port.Fields{"pause": s.cfg.RateLimitPause.String()})
					if sleepErr := s.clock.Sleep(ctx, s.cfg.RateLimitPause); sleepErr != nil {
						return stats, nil
					}
				}
			}
		}
	}

	logger.Info("Scrape cycle finished", port.Fields{
		"feeds":      stats.FeedsVisited,
		"pages":      stats.PagesVisited,
		"candidates": stats.Candidates,
		"emitted":    stats.ListingsEmitted,
		"blocked":    stats.Blocked,
		"skipped":    stats.Skipped,
		"errors":     stats.Errors,
	})

	if stats.PagesVisited == 0 && len(errs) > 0 {
		return stats, fmt.Errorf("scheduler: no page could be fetched: %w", errors.Join(errs...))
	}
	return stats, nil
}

// quickFeed - только первая страница, курсор не трогаем
func (s *Scheduler) quickFeed(ctx context.Context, adapter port.SourceAdapter, feed domain.Feed, cc CycleContext) (domain.CycleStats, error) {
	res, err := s.crawler.Execute(ctx, adapter, feed, 1, cc)
	return res.Stats, err
}

// fullFeed продолжает с сохраненного курсора; курсор сохраняется после каждой удачной страницы
func (s *Scheduler) fullFeed(ctx context.Context, adapter port.SourceAdapter, feed domain.Feed, cc CycleContext) (domain.CycleStats, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"feed": feed.Key})
	var stats domain.CycleStats

	page, err := s.cursors.GetNextPage(ctx, feed.Key, 1)
	if err != nil {
		logger.Warn("Could not read cursor, starting from page 1", port.Fields{"error": err.Error()})
		page = 1
	}
	if page < 1 {
		page = 1
	}

	empty := 0
	for i := 0; i < s.cfg.FullMaxPages; i++ {
		if !s.running.Load() {
			return stats, nil
		}
		if i > 0 {
			if err := s.clock.Sleep(ctx, s.cfg.Jitter.BetweenPages.Pick()); err != nil {
				return stats, nil
			}
		}

		res, err := s.crawler.Execute(ctx, adapter, feed, page, cc)
		stats.Add(res.Stats)
		if err != nil {
			return stats, err
		}

		if res.Candidates == 0 {
			empty++
			if empty >= emptyPagesLimit {
				logger.Info("Reached the end of feed, resetting cursor", port.Fields{"page": page})
				if err := s.cursors.SetNextPage(ctx, feed.Key, 1); err != nil {
					logger.Error("Failed to reset cursor", err, nil)
				}
				return stats, nil
			}
		} else {
			empty = 0
		}

		page++
		if err := s.cursors.SetNextPage(ctx, feed.Key, page); err != nil {
			logger.Error("Failed to save cursor", err, port.Fields{"next_page": page})
		}
	}
	logger.Debug("Page limit reached, cursor kept for next run", port.Fields{"next_page": page})
	return stats, nil
}

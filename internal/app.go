package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"

	"immo-parser-service/internal/adapters/cronclock"
	"immo-parser-service/internal/adapters/egress"
	"immo-parser-service/internal/adapters/fanout"
	"immo-parser-service/internal/adapters/httpfetcher"
	logger_adapter "immo-parser-service/internal/adapters/logger"
	"immo-parser-service/internal/adapters/memory"
	postgres_adapter "immo-parser-service/internal/adapters/postgres"
	rabbitmq_adapter "immo-parser-service/internal/adapters/rabbitmq"
	"immo-parser-service/internal/adapters/rest"
	"immo-parser-service/internal/adapters/sources"
	"immo-parser-service/internal/adapters/sources/derstandard"
	"immo-parser-service/internal/adapters/sources/immoscout"
	"immo-parser-service/internal/adapters/sources/willhaben"
	"immo-parser-service/internal/configs"
	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/classify"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
	"immo-parser-service/internal/core/usecase"
	fluentlogger "immo-parser-service/pkg/fluent_logger"
	"immo-parser-service/pkg/postgres"
	"immo-parser-service/pkg/rabbitmq/rabbitmq_common"
	"immo-parser-service/pkg/rabbitmq/rabbitmq_producer"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort
	baseLogger    port.LoggerPort

	// фоновые сервисы: запускаются по порядку, закрываются в обратном
	services  []namedService
	apiServer *rest.Server
}

type namedService struct {
	name    string
	service port.BackgroundServicePort
}

// NewApp создает новый экземпляр приложения.
// Здесь все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}
	if err := app.init(); err != nil {
		app.release()
		return nil, err
	}
	return app, nil
}

func (a *App) init() error {
	cfg := a.config

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.IsJSON,
		UseColor: !cfg.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.FluentBit.Tag,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return fmt.Errorf("failed to create multi-logger: %w", err)
	}
	a.baseLogger = multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	a.logger = a.baseLogger.WithFields(port.Fields{"component": "app"})
	a.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})

	// --- 2. ИСТОЧНИКИ ---
	overrides, err := configs.LoadSourceOverrides(cfg.Sources.File)
	if err != nil {
		a.logger.Error("Failed to load sources file", err, port.Fields{"path": cfg.Sources.File})
		return err
	}
	adapters, err := buildAdapters(cfg, overrides)
	if err != nil {
		a.logger.Error("Failed to build source adapters", err, nil)
		return err
	}
	a.logger.Info("Source adapters initialized", port.Fields{"sources": cfg.Sources.Enabled})

	// --- 3. ЗАГРУЗКА СТРАНИЦ ---
	egressManager, err := egress.NewManager(cfg.Egress.Proxies, cfg.Egress.PoolSize, cfg.Egress.Direct)
	if err != nil {
		a.logger.Error("Failed to create egress manager", err, nil)
		return fmt.Errorf("failed to create egress manager: %w", err)
	}
	fetchClient, err := httpfetcher.NewClient(httpfetcher.Config{
		Timeout: cfg.Fetch.Timeout,
		MaxRPS:  cfg.Fetch.MaxRPS,
	}, egressManager, a.baseLogger.WithFields(port.Fields{"component": "fetch_client"}))
	if err != nil {
		a.logger.Error("Failed to create fetch client", err, nil)
		return fmt.Errorf("failed to create fetch client: %w", err)
	}
	fetcher := httpfetcher.NewSessionFetcher(fetchClient, httpfetcher.NewSession())
	a.logger.Info("Fetch client initialized", port.Fields{"egress_identities": egressManager.Size()})

	// --- 4. ХРАНИЛИЩА ---
	var (
		cursors     port.CursorStorePort
		history     port.ListingHistoryPort
		reader      port.ListingReaderPort
		listingSink []port.ListingSinkPort
		phoneSinks  []port.PhoneSinkPort
	)
	switch cfg.CursorStore {
	case configs.CursorStorePostgres:
		a.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{
			DatabaseURL: cfg.Database.URL,
			MaxConns:    cfg.Database.MaxConns,
		})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := postgres_adapter.Migrate(context.Background(), a.dbPool); err != nil {
			a.logger.Error("Failed to apply schema", err, nil)
			return err
		}
		cursorRepo, err := postgres_adapter.NewCursorRepository(a.dbPool)
		if err != nil {
			return err
		}
		listingRepo, err := postgres_adapter.NewListingRepository(a.dbPool)
		if err != nil {
			return err
		}
		cursors, history, reader = cursorRepo, listingRepo, listingRepo
		listingSink = append(listingSink, listingRepo)
		a.logger.Info("Successfully connected to PostgreSQL pool!", nil)
	default:
		memCursors := memory.NewCursorStore()
		memListings := memory.NewListingStore()
		cursors, history, reader = memCursors, memListings, memListings
		listingSink = append(listingSink, memListings)
		a.logger.Warn("Using in-memory stores, cursors are lost on restart", nil)
	}

	// --- 5. RABBITMQ ---
	if cfg.RabbitMQ.Enabled {
		connManager, err := rabbitmq_common.NewManager(rabbitmq_common.Config{
			URL:               cfg.RabbitMQ.URL,
			ReconnectInterval: cfg.RabbitMQ.ReconnectInterval,
		}, rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})))
		if err != nil {
			a.logger.Error("Failed to create connection manager", err, nil)
			return fmt.Errorf("failed to create connection manager: %w", err)
		}
		a.connManager = connManager

		a.eventProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			ExchangeName:             constants.ExchangeName,
			ExchangeType:             constants.ExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
		}, connManager)
		if err != nil {
			a.logger.Error("Failed to create event producer", err, nil)
			return fmt.Errorf("failed to create event producer: %w", err)
		}

		contracts, err := rabbitmq_adapter.LoadContracts()
		if err != nil {
			a.logger.Error("Failed to compile event contracts", err, nil)
			return err
		}
		listingPublisher, err := rabbitmq_adapter.NewListingPublisher(a.eventProducer, contracts)
		if err != nil {
			return err
		}
		phonePublisher, err := rabbitmq_adapter.NewPhonePublisher(a.eventProducer, contracts)
		if err != nil {
			return err
		}
		listingSink = append(listingSink, listingPublisher)
		phoneSinks = append(phoneSinks, phonePublisher)
		a.logger.Info("RabbitMQ Event Producer initialized.", nil)
	}

	sink, err := fanout.NewListingSink(listingSink...)
	if err != nil {
		return fmt.Errorf("failed to build listing sink: %w", err)
	}
	var phones port.PhoneSinkPort
	if len(phoneSinks) > 0 {
		phones = fanout.NewPhoneSink(phoneSinks...)
	}

	// --- 6. USE CASES ---
	clock := cronclock.Clock{}
	jitter := usecase.DefaultJitter()
	pipeline := usecase.NewListingPipeline(cfg.PipelineBuffer, sink, history, phones, clock, a.baseLogger)
	crawler := usecase.NewCrawlPageUseCase(fetcher, pipeline, clock, usecase.CrawlConfig{
		PageTimeout:   cfg.Fetch.Timeout,
		DetailTimeout: cfg.Fetch.DetailTimeout,
		Jitter:        jitter,
	})
	scheduler, err := usecase.NewScheduler(adapters, crawler, cursors,
		cronclock.NewCron(a.baseLogger.WithFields(port.Fields{"component": "cron"})), clock,
		usecase.SchedulerConfig{
			QuickInterval:   cfg.Scheduler.QuickInterval,
			FullInterval:    cfg.Scheduler.FullInterval,
			FullMaxPages:    cfg.Scheduler.FullMaxPages,
			StartupBackoff:  cfg.Scheduler.StartupBackoff,
			StartupAttempts: cfg.Scheduler.StartupAttempts,
			RateLimitPause:  cfg.Scheduler.RateLimitPause,
			Jitter:          jitter,
		})
	if err != nil {
		a.logger.Error("Failed to create scheduler", err, nil)
		return err
	}
	a.services = []namedService{
		{name: "listing_pipeline", service: pipeline},
		{name: "scheduler", service: scheduler},
	}

	// --- 7. HTTP ---
	handlers := rest.NewScrapeHandlers(scheduler, egressManager, fetcher.Session(), reader)
	a.apiServer = rest.NewServer(cfg.Rest.Port, handlers, a.baseLogger.WithFields(port.Fields{"component": "rest"}))

	a.logger.Info("Application initialized", nil)
	return nil
}

// buildAdapters собирает адаптеры в порядке ENABLED_SOURCES
func buildAdapters(cfg *configs.AppConfig, overrides *configs.SourceOverrides) ([]port.SourceAdapter, error) {
	profile := classify.DefaultProfile()
	if len(overrides.CommercialKeywords) > 0 {
		profile.CommercialKeywords = overrides.CommercialKeywords
	}
	denyList := constants.PhoneDenyList
	if len(overrides.PhoneDenyList) > 0 {
		denyList = overrides.PhoneDenyList
	}

	optionsFor := func(source domain.Source) (sources.Options, error) {
		feeds, err := overrides.FeedsFor(source)
		if err != nil {
			return sources.Options{}, err
		}
		return sources.Options{Feeds: feeds, Profile: profile, PhoneDenyList: denyList}, nil
	}

	seen := make(map[domain.Source]bool)
	var adapters []port.SourceAdapter
	for _, name := range cfg.Sources.Enabled {
		source := domain.Source(name)
		if seen[source] {
			continue
		}
		seen[source] = true

		opts, err := optionsFor(source)
		if err != nil {
			return nil, err
		}
		switch source {
		case domain.SourceWillhaben:
			adapters = append(adapters, willhaben.New(willhaben.Options{
				Options:         opts,
				RequireDistrict: cfg.Sources.WillhabenRequireDistrict,
			}))
		case domain.SourceImmoscout:
			adapters = append(adapters, immoscout.New(opts))
		case domain.SourceDerStandard:
			adapters = append(adapters, derstandard.New(opts))
		default:
			return nil, fmt.Errorf("unknown source %q in ENABLED_SOURCES", name)
		}
	}
	return adapters, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(contextkeys.ContextWithLogger(context.Background(), a.baseLogger))
	defer cancelApp()

	started := 0
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)
		a.shutdown(started)
		a.release()
	}()

	for _, s := range a.services {
		if err := s.service.Start(appCtx); err != nil {
			a.logger.Error("Failed to start background service", err, port.Fields{"service": s.name})
			return fmt.Errorf("%s: %w", s.name, err)
		}
		started++
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		a.logger.Error("REST server failed, shutting down", err, nil)
		runErr = err
	}
	return runErr
}

// shutdown останавливает HTTP и запущенные сервисы в обратном порядке:
// сначала планировщик, затем пайплайн дочитывает очередь
func (a *App) shutdown(started int) {
	if a.apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.apiServer.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Error stopping REST server", err, nil)
		}
		cancel()
	}
	for i := started - 1; i >= 0; i-- {
		s := a.services[i]
		if err := s.service.Close(); err != nil {
			a.logger.Error("Error closing background service", err, port.Fields{"service": s.name})
		}
	}
}

// release закрывает внешние соединения; безопасен для частично собранного App
func (a *App) release() {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		if a.logger != nil {
			a.logger.Info("PostgreSQL pool closed.", nil)
		}
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}

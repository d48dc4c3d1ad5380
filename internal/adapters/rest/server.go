package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"immo-parser-service/internal/core/port"
)

// Server - служебный HTTP API: здоровье, статус и ручное управление обходом
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты; вынесен отдельно для httptest
func NewRouter(handlers *ScrapeHandlers, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.HandleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.HandleStatus)
		r.Get("/listings/recent", handlers.HandleRecentListings)
		r.Route("/scrape", func(r chi.Router) {
			r.Post("/stop", handlers.HandleStop)
			r.Post("/{mode}", handlers.HandleTrigger)
		})
	})
	return r
}

func NewServer(listenPort string, handlers *ScrapeHandlers, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + listenPort,
			Handler:           NewRouter(handlers, baseLogger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start блокирует до Shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server", nil)
	return s.httpServer.Shutdown(ctx)
}

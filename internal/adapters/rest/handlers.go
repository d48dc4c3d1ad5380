package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
	"immo-parser-service/internal/core/usecase"
)

// ScrapeControl - операции планировщика, доступные через API
type ScrapeControl interface {
	Status() usecase.Status
	TriggerAsync(mode domain.ScrapeMode) bool
	Stop()
}

// RequestCounter - счетчик запросов сессии
type RequestCounter interface {
	Requests() uint64
}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

type ScrapeHandlers struct {
	control  ScrapeControl
	egress   port.EgressPort
	session  RequestCounter
	listings port.ListingReaderPort
	started  time.Time
}

// NewScrapeHandlers: egress, session и listings могут быть nil
func NewScrapeHandlers(control ScrapeControl, egress port.EgressPort, session RequestCounter, listings port.ListingReaderPort) *ScrapeHandlers {
	return &ScrapeHandlers{control: control, egress: egress, session: session, listings: listings, started: time.Now()}
}

// HandleHealth - GET /healthz
func (h *ScrapeHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStatus - GET /api/v1/status
func (h *ScrapeHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	dto := toStatusDTO(h.control.Status())
	dto.UptimeSeconds = int64(time.Since(h.started).Seconds())
	if h.egress != nil {
		dto.EgressUsage = h.egress.Usage()
	}
	if h.session != nil {
		dto.SessionRequests = h.session.Requests()
	}
	RespondWithJSON(w, http.StatusOK, dto)
}

// HandleTrigger - POST /api/v1/scrape/{quick|full}
func (h *ScrapeHandlers) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleTrigger"})

	mode := domain.ScrapeMode(chi.URLParam(r, "mode"))
	if mode != domain.ModeQuick && mode != domain.ModeFull {
		WriteJSONError(w, http.StatusNotFound, "unknown scrape mode, expected 'quick' or 'full'")
		return
	}
	if !h.control.TriggerAsync(mode) {
		st := h.control.Status()
		logger.Info("Manual trigger rejected, cycle in progress", port.Fields{"mode": string(mode), "state": string(st.State)})
		WriteJSONError(w, http.StatusConflict, "a scrape cycle is already running: "+string(st.State))
		return
	}
	logger.Info("Manual trigger accepted", port.Fields{"mode": string(mode)})
	RespondWithJSON(w, http.StatusAccepted, TriggerResponseDTO{Mode: string(mode), Accepted: true})
}

// HandleStop - POST /api/v1/scrape/stop
func (h *ScrapeHandlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.control.Stop()
	RespondWithJSON(w, http.StatusAccepted, map[string]bool{"stop_requested": true})
}

// HandleRecentListings - GET /api/v1/listings/recent?limit=N
func (h *ScrapeHandlers) HandleRecentListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleRecentListings"})

	if h.listings == nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "listing store is not configured")
		return
	}
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}

	listings, err := h.listings.RecentListings(r.Context(), limit)
	if err != nil {
		logger.Error("Failed to load recent listings", err, port.Fields{"limit": limit})
		WriteJSONError(w, http.StatusInternalServerError, "failed to load recent listings")
		return
	}
	dto := RecentListingsResponseDTO{Count: len(listings), Listings: make([]ListingDTO, 0, len(listings))}
	for _, l := range listings {
		dto.Listings = append(dto.Listings, toListingDTO(l))
	}
	RespondWithJSON(w, http.StatusOK, dto)
}

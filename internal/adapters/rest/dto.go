package rest

import (
	"time"

	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/usecase"
)

type CycleDTO struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Number    int       `json:"number"`
	StartedAt time.Time `json:"started_at"`
}

type CycleStatsDTO struct {
	FeedsVisited    int `json:"feeds_visited"`
	PagesVisited    int `json:"pages_visited"`
	Candidates      int `json:"candidates"`
	ListingsEmitted int `json:"listings_emitted"`
	Blocked         int `json:"blocked"`
	Skipped         int `json:"skipped"`
	Errors          int `json:"errors"`
}

type StatusResponseDTO struct {
	State           string            `json:"state"`
	IsRunning       bool              `json:"is_running"`
	CurrentCycle    *CycleDTO         `json:"current_cycle"`
	CyclesFinished  int               `json:"cycles_finished"`
	TotalFound      int               `json:"total_found"`
	LastStats       CycleStatsDTO     `json:"last_stats"`
	LastFinishedAt  *time.Time        `json:"last_finished_at"`
	EgressUsage     map[string]uint64 `json:"egress_usage,omitempty"`
	SessionRequests uint64            `json:"session_requests"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
}

type TriggerResponseDTO struct {
	Mode     string `json:"mode"`
	Accepted bool   `json:"accepted"`
}

type ListingDTO struct {
	URL          string     `json:"url"`
	Source       string     `json:"source"`
	ExternalID   string     `json:"external_id"`
	Title        string     `json:"title"`
	Price        int        `json:"price"`
	AreaM2       *float64   `json:"area_m2"`
	EurPerM2     *int       `json:"eur_per_m2"`
	Location     string     `json:"location"`
	PostalCode   string     `json:"postal_code"`
	DistrictCode *int       `json:"district_code"`
	DistrictName *string    `json:"district_name"`
	Geohash      string     `json:"geohash,omitempty"`
	Category     string     `json:"category"`
	Region       string     `json:"region"`
	Images       []string   `json:"images"`
	PublishedAt  *time.Time `json:"published_at"`
	FirstSeenAt  *time.Time `json:"first_seen_at"`
}

type RecentListingsResponseDTO struct {
	Count    int          `json:"count"`
	Listings []ListingDTO `json:"listings"`
}

func toListingDTO(l domain.Listing) ListingDTO {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingDTO{
		URL:          l.URL,
		Source:       string(l.Source),
		ExternalID:   l.ExternalID,
		Title:        l.Title,
		Price:        l.Price,
		AreaM2:       l.AreaM2,
		EurPerM2:     l.EurPerM2,
		Location:     l.Location,
		PostalCode:   l.PostalCode,
		DistrictCode: l.DistrictCode,
		DistrictName: l.DistrictName,
		Geohash:      l.Geohash,
		Category:     string(l.Category),
		Region:       string(l.Region),
		Images:       images,
		PublishedAt:  l.PublishedAt,
		FirstSeenAt:  l.FirstSeenAt,
	}
}

func toStatusDTO(st usecase.Status) StatusResponseDTO {
	dto := StatusResponseDTO{
		State:          string(st.State),
		IsRunning:      st.IsRunning,
		CyclesFinished: st.CyclesFinished,
		TotalFound:     st.TotalFound,
		LastStats:      toStatsDTO(st.LastStats),
		LastFinishedAt: st.LastFinishedAt,
	}
	if st.CurrentCycle != nil {
		dto.CurrentCycle = &CycleDTO{
			ID:        st.CurrentCycle.ID.String(),
			Mode:      string(st.CurrentCycle.Mode),
			Number:    st.CurrentCycle.Number,
			StartedAt: st.CurrentCycle.StartedAt,
		}
	}
	return dto
}

func toStatsDTO(s domain.CycleStats) CycleStatsDTO {
	return CycleStatsDTO{
		FeedsVisited:    s.FeedsVisited,
		PagesVisited:    s.PagesVisited,
		Candidates:      s.Candidates,
		ListingsEmitted: s.ListingsEmitted,
		Blocked:         s.Blocked,
		Skipped:         s.Skipped,
		Errors:          s.Errors,
	}
}

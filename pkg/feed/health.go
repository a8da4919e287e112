package feed

import (
	"time"

	"github.com/securo-skn/crimefeed/pkg/aggregator"
)

// ActiveWindow is how recently a source must have been scraped to count as active.
const ActiveWindow = time.Hour

type SourceHealth struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Domain      string     `json:"domain"`
	Kind        string     `json:"kind"`
	Enabled     bool       `json:"enabled"`
	Official    bool       `json:"official"`
	LastScraped *time.Time `json:"last_scraped"`
	LastCount   int        `json:"last_count"`
	LastError   string     `json:"last_error,omitempty"`
	Status      string     `json:"status"`
	Health      string     `json:"health"`
}

type Health struct {
	Success         bool           `json:"success"`
	SystemStatus    string         `json:"system_status"`
	ActiveSources   int            `json:"active_sources"`
	TotalSources    int            `json:"total_sources"`
	Sources         []SourceHealth `json:"sources"`
	LastAggregation *time.Time     `json:"last_aggregation"`
	LastRun         *time.Time     `json:"last_run"`
	LastRunID       string         `json:"last_run_id,omitempty"`
	LastOutcome     string         `json:"last_outcome,omitempty"`
	CacheStatus     string         `json:"cache_status"`
	CachedIncidents int            `json:"cached_incidents"`
}

// Sources reports per-source freshness without triggering a fetch.
func (s *Service) Sources() Health {
	return BuildHealth(s.backend.State(), s.now())
}

// BuildHealth derives source health from an aggregator snapshot.
func BuildHealth(st aggregator.State, now time.Time) Health {
	h := Health{
		Success:         true,
		TotalSources:    len(st.Sources),
		Sources:         make([]SourceHealth, 0, len(st.Sources)),
		LastRunID:       st.LastRunID,
		LastOutcome:     st.LastOutcome,
		CacheStatus:     "empty",
		CachedIncidents: st.CacheSize,
	}
	if st.CacheSize > 0 {
		h.CacheStatus = "available"
	}
	if !st.LastRun.IsZero() {
		lr := st.LastRun
		h.LastRun = &lr
	}
	if !st.LastUpdate.IsZero() {
		lu := st.LastUpdate
		h.LastAggregation = &lu
	}

	for _, src := range st.Sources {
		d := src.Descriptor
		sh := SourceHealth{
			ID:        d.ID,
			Name:      d.Name,
			URL:       d.URL,
			Domain:    d.Domain(),
			Kind:      d.Kind,
			Enabled:   d.Enabled,
			Official:  d.Official,
			LastCount: src.LastCount,
			LastError: src.LastError,
			Status:    "stale",
			Health:    "checking",
		}
		if !src.LastFetch.IsZero() {
			last := src.LastFetch
			sh.LastScraped = &last
			if now.Sub(last) < ActiveWindow {
				sh.Status = "active"
				sh.Health = "good"
				h.ActiveSources++
			}
		}
		h.Sources = append(h.Sources, sh)
	}

	h.SystemStatus = "limited"
	if h.ActiveSources >= 1 {
		h.SystemStatus = "healthy"
	}
	return h
}

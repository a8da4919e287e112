// Package feed is the read side of crimefeed: filtering, pagination and
// summary statistics over an aggregation cycle, plus source health.
package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/aggregator"
	"github.com/securo-skn/crimefeed/pkg/incident"
)

// FallbackNote is attached to responses served from the emergency batch.
const FallbackNote = "Using fallback data due to source unavailability"

// All disables a filter.
const All = "all"

// Backend is the aggregation side the service reads from.
type Backend interface {
	FetchIncidents(ctx context.Context) []incident.Incident
	State() aggregator.State
}

type Config struct {
	Backend Backend
	Now     func() time.Time
	Rand    *utils.Rand
	Log     aggregator.Logger // optional
}

type Service struct {
	backend Backend
	now     func() time.Time
	rng     *utils.Rand
	log     aggregator.Logger
}

func NewService(cfg Config) *Service {
	s := &Service{backend: cfg.Backend, now: cfg.Now, rng: cfg.Rand, log: cfg.Log}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rng == nil {
		s.rng = utils.NewTimeRand()
	}
	if s.log == nil {
		s.log = aggregator.NopLogger{}
	}
	return s
}

// Filters narrow the feed by exact field equality. Empty or "all" means no
// constraint on that field.
type Filters struct {
	Severity string `json:"severity"`
	Zone     string `json:"zone"`
	Category string `json:"category"`
}

func (f Filters) normalized() Filters {
	norm := func(v string) string {
		if v == "" {
			return All
		}
		return v
	}
	return Filters{Severity: norm(f.Severity), Zone: norm(f.Zone), Category: norm(f.Category)}
}

// Match reports whether inc satisfies every set filter.
func (f Filters) Match(inc incident.Incident) bool {
	return matches(f.Severity, string(inc.Severity)) &&
		matches(f.Zone, string(inc.Zone)) &&
		matches(f.Category, string(inc.Category))
}

func matches(want, got string) bool {
	return want == "" || want == All || want == got
}

type Request struct {
	Filters  Filters
	Page     int
	PageSize int
}

type DataSources struct {
	Scraped     int        `json:"scraped"`
	Trend       int        `json:"trend"`
	Simulated   int        `json:"simulated"`
	LastUpdated *time.Time `json:"last_updated"`
}

type Stats struct {
	ActiveIncidents int         `json:"active_incidents"`
	Recent24h       int         `json:"recent_24h"`
	DataSources     DataSources `json:"data_sources"`
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasMore     bool `json:"has_more"`
}

type Response struct {
	Success        bool                `json:"success"`
	Incidents      []incident.Incident `json:"incidents"`
	Stats          Stats               `json:"stats"`
	Pagination     Pagination          `json:"pagination"`
	FiltersApplied Filters             `json:"filters_applied"`
	Note           string              `json:"note,omitempty"`
	LastUpdated    time.Time           `json:"last_updated"`
}

// Query runs one aggregation cycle and returns the requested page. It never
// fails: when the cycle breaks down the simulated batch is served with a note.
func (s *Service) Query(ctx context.Context, req Request) Response {
	req = req.withDefaults()
	now := s.now()

	all, note := s.fetch(ctx, now)
	state := s.backend.State()

	filtered := make([]incident.Incident, 0, len(all))
	for _, inc := range all {
		if req.Filters.Match(inc) {
			filtered = append(filtered, inc)
		}
	}
	SortNewestFirst(filtered)

	items, pagination := Paginate(filtered, req.Page, req.PageSize)
	s.log.Infof("Serving %d of %d incidents (page %d)", len(items), len(filtered), req.Page)

	return Response{
		Success:        true,
		Incidents:      items,
		Stats:          ComputeStats(all, now, state.LastUpdate),
		Pagination:     pagination,
		FiltersApplied: req.Filters.normalized(),
		Note:           note,
		LastUpdated:    now,
	}
}

// fetch calls the backend, converting a panic or an empty result into the
// simulated batch.
func (s *Service) fetch(ctx context.Context, now time.Time) (out []incident.Incident, note string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Live feed error: %v", r)
			out, note = aggregator.Simulated(now, s.rng), FallbackNote
		}
	}()
	out = s.backend.FetchIncidents(ctx)
	if len(out) == 0 {
		s.log.Errorf("Live feed error: aggregation returned no incidents")
		return aggregator.Simulated(now, s.rng), FallbackNote
	}
	return out, ""
}

// SortNewestFirst orders incidents by timestamp, most recent first. Equal
// timestamps keep their relative order.
func SortNewestFirst(incidents []incident.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].Timestamp.After(incidents[j].Timestamp)
	})
}

// Paginate slices out a 1-indexed page. Pages past the end are empty.
func Paginate(items []incident.Incident, page, perPage int) ([]incident.Incident, Pagination) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(items)
	p := Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		TotalItems:  total,
		TotalPages:  total / perPage,
	}
	if total%perPage != 0 {
		p.TotalPages++
	}

	// Compare page numbers before multiplying so huge pages can't overflow.
	if page > p.TotalPages {
		return []incident.Incident{}, p
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	p.HasMore = end < total
	return incident.Clone(items[start:end]), p
}

// ComputeStats summarizes the unfiltered cycle result.
func ComputeStats(all []incident.Incident, now, lastUpdate time.Time) Stats {
	var st Stats
	for _, inc := range all {
		if inc.Status == incident.StatusActive || inc.Status == incident.StatusReported {
			st.ActiveIncidents++
		}
		if now.Sub(inc.Timestamp) < 24*time.Hour {
			st.Recent24h++
		}
	}
	counts := incident.CountByTier(all)
	st.DataSources = DataSources{
		Scraped:   counts[incident.TierScraped],
		Trend:     counts[incident.TierTrend],
		Simulated: counts[incident.TierSimulated],
	}
	if !lastUpdate.IsZero() {
		lu := lastUpdate
		st.DataSources.LastUpdated = &lu
	}
	return st
}

type RefreshResult struct {
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	IncidentsFound int       `json:"incidents_found"`
	RefreshTime    time.Time `json:"refresh_time"`
	SourcesChecked []string  `json:"sources_checked"`
}

// Refresh runs an aggregation cycle outside of a feed request.
func (s *Service) Refresh(ctx context.Context) RefreshResult {
	s.log.Infof("Manual refresh of crime sources requested")
	found := s.backend.FetchIncidents(ctx)

	st := s.backend.State()
	checked := make([]string, 0, len(st.Sources))
	for _, src := range st.Sources {
		if src.Descriptor.Enabled {
			checked = append(checked, src.Descriptor.ID)
		}
	}
	return RefreshResult{
		Success:        true,
		Message:        fmt.Sprintf("Crime sources refreshed successfully. Found %d incidents.", len(found)),
		IncidentsFound: len(found),
		RefreshTime:    s.now(),
		SourcesChecked: checked,
	}
}

// Package aggregator runs every source adapter, caches the live result and
// degrades to trend and simulated data when sources come back thin or empty.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/metrics"
	"github.com/securo-skn/crimefeed/pkg/sources"
)

const (
	DefaultConcurrency = 3
	// DefaultMinLive is the live count below which trend data is appended.
	DefaultMinLive = 5
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// NopLogger silently discards all messages.
type NopLogger struct{}

func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debugf(string, ...interface{}) {}

// Archive receives every non-empty live result. Failures are logged only.
type Archive interface {
	UpsertIncidents(ctx context.Context, incidents []incident.Incident) (int, error)
}

type Config struct {
	Adapters    []sources.Adapter
	Concurrency int           // defaults to 3 if <= 0
	Timeout     time.Duration // per adapter; 0 leaves it to the HTTP client
	MinLive     int           // defaults to 5 if <= 0
	Rand        *utils.Rand
	Now         func() time.Time
	Log         Logger           // optional; nil = no logging
	Metrics     *metrics.Metrics // optional
	Archive     Archive          // optional
}

// SourceState is the runtime view of one adapter.
type SourceState struct {
	Descriptor  sources.Descriptor
	LastFetch   time.Time // last successful fetch, zero if never
	LastAttempt time.Time
	LastCount   int
	LastError   string
}

// State is a point-in-time copy of the aggregator's shared state.
type State struct {
	Sources     []SourceState
	CacheSize   int
	LastUpdate  time.Time // last time the cache was replaced
	LastRun     time.Time
	LastRunID   string
	LastOutcome string
}

type Aggregator struct {
	cfg Config
	log Logger

	mu          sync.RWMutex
	cache       []incident.Incident
	lastUpdate  time.Time
	lastRun     time.Time
	lastRunID   string
	lastOutcome string
	sources     []*SourceState
	byID        map[string]*SourceState
}

func New(cfg Config) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MinLive <= 0 {
		cfg.MinLive = DefaultMinLive
	}
	if cfg.Rand == nil {
		cfg.Rand = utils.NewTimeRand()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Log
	if log == nil {
		log = NopLogger{}
	}

	a := &Aggregator{cfg: cfg, log: log, byID: make(map[string]*SourceState, len(cfg.Adapters))}
	for _, ad := range cfg.Adapters {
		st := &SourceState{Descriptor: ad.Descriptor()}
		a.sources = append(a.sources, st)
		a.byID[st.Descriptor.ID] = st
	}
	return a
}

// Now returns the aggregator's clock reading.
func (a *Aggregator) Now() time.Time { return a.cfg.Now() }

// Rand returns the shared random source.
func (a *Aggregator) Rand() *utils.Rand { return a.cfg.Rand }

// fetchResult is the outcome of one adapter run.
type fetchResult struct {
	id        string
	incidents []incident.Incident
	err       error
	at        time.Time
}

// FetchIncidents runs one aggregation cycle. The result is never empty:
// live incidents when any source produced some, otherwise the cached live
// set, otherwise the simulated batch. Live or cached sets smaller than
// MinLive get the trend batch appended.
func (a *Aggregator) FetchIncidents(ctx context.Context) []incident.Incident {
	runID := uuid.NewString()
	now := a.cfg.Now()
	a.log.Debugf("Aggregation %s started with %d sources", runID, len(a.cfg.Adapters))

	live, results, err := a.collectSafely(ctx)

	var (
		out     []incident.Incident
		outcome string
	)

	a.mu.Lock()
	a.applyResults(results)
	switch {
	case err == nil && len(live) > 0:
		a.cache = incident.Clone(live)
		a.lastUpdate = now
		out = live
		outcome = metrics.OutcomeLive
	case len(a.cache) > 0:
		out = incident.Clone(a.cache)
		outcome = metrics.OutcomeCache
	default:
		outcome = metrics.OutcomeSimulated
	}
	cacheSize := len(a.cache)
	a.lastRun = now
	a.lastRunID = runID
	a.lastOutcome = outcome
	a.mu.Unlock()

	switch outcome {
	case metrics.OutcomeLive:
		a.log.Infof("Aggregation %s: %d live incidents", runID, len(live))
		a.archive(ctx, live)
	case metrics.OutcomeCache:
		if err != nil {
			a.log.Errorf("Aggregation %s failed: %v", runID, err)
		}
		a.log.Infof("Aggregation %s: no live incidents, serving %d cached", runID, len(out))
	default:
		if err != nil {
			a.log.Errorf("Aggregation %s failed: %v", runID, err)
		}
		a.log.Warnf("Aggregation %s: no live or cached incidents, serving simulated data", runID)
		out = Simulated(now, a.cfg.Rand)
	}

	if outcome != metrics.OutcomeSimulated && len(out) < a.cfg.MinLive {
		a.log.Warnf("Limited live data (%d incidents), supplementing with trend data", len(out))
		out = append(out, Trend(now, a.cfg.Rand)...)
	}

	a.cfg.Metrics.ObserveCycle(outcome, out, cacheSize)
	return out
}

// collectSafely turns a panic anywhere in the collection step into an error.
func (a *Aggregator) collectSafely(ctx context.Context) (live []incident.Incident, results []fetchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			live, results = nil, nil
			err = fmt.Errorf("collecting sources: %v", r)
		}
	}()
	return a.collect(ctx)
}

// collect fans the enabled adapters out over a worker pool and gathers
// their incidents in adapter order.
func (a *Aggregator) collect(ctx context.Context) ([]incident.Incident, []fetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var enabled []int
	for i, ad := range a.cfg.Adapters {
		if ad.Descriptor().Enabled {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		return nil, nil, errors.New("no enabled sources")
	}

	results := make([]fetchResult, len(a.cfg.Adapters))
	jobs := make(chan int, len(enabled))

	var wg sync.WaitGroup
	for w := 0; w < a.cfg.Concurrency && w < len(enabled); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = a.fetchOne(ctx, a.cfg.Adapters[i])
			}
		}()
	}
	for _, i := range enabled {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var live []incident.Incident
	ran := make([]fetchResult, 0, len(enabled))
	for _, i := range enabled {
		live = append(live, results[i].incidents...)
		ran = append(ran, results[i])
	}
	return live, ran, nil
}

// fetchOne runs a single adapter. Errors and panics stay inside its result.
func (a *Aggregator) fetchOne(ctx context.Context, ad sources.Adapter) (res fetchResult) {
	d := ad.Descriptor()
	res.id = d.ID
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.incidents = nil
			res.err = fmt.Errorf("source %s panicked: %v", d.ID, r)
		}
		res.at = a.cfg.Now()
		if res.err != nil {
			a.log.Warnf("Failed to fetch %s: %v", d.Name, res.err)
		} else {
			a.log.Debugf("Fetched %d incidents from %s", len(res.incidents), d.Name)
		}
		a.cfg.Metrics.ObserveFetch(d.ID, time.Since(start), len(res.incidents), res.err)
	}()

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	incidents, err := ad.Fetch(ctx)
	if err != nil {
		return fetchResult{id: d.ID, err: err}
	}
	return fetchResult{id: d.ID, incidents: incidents}
}

// applyResults records per-source outcomes. Callers hold a.mu.
func (a *Aggregator) applyResults(results []fetchResult) {
	for _, r := range results {
		st, ok := a.byID[r.id]
		if !ok {
			continue
		}
		st.LastAttempt = r.at
		if r.err != nil {
			st.LastError = r.err.Error()
			continue
		}
		st.LastFetch = r.at
		st.LastCount = len(r.incidents)
		st.LastError = ""
	}
}

func (a *Aggregator) archive(ctx context.Context, live []incident.Incident) {
	if a.cfg.Archive == nil {
		return
	}
	n, err := a.cfg.Archive.UpsertIncidents(ctx, live)
	if err != nil {
		a.cfg.Metrics.ArchiveFailed()
		a.log.Warnf("Could not archive incidents: %v", err)
		return
	}
	a.log.Debugf("Archived %d incidents", n)
}

// Cached returns a copy of the last live result.
func (a *Aggregator) Cached() []incident.Incident {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return incident.Clone(a.cache)
}

// State returns a snapshot of the cache and per-source status.
func (a *Aggregator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := State{
		Sources:     make([]SourceState, 0, len(a.sources)),
		CacheSize:   len(a.cache),
		LastUpdate:  a.lastUpdate,
		LastRun:     a.lastRun,
		LastRunID:   a.lastRunID,
		LastOutcome: a.lastOutcome,
	}
	for _, st := range a.sources {
		s.Sources = append(s.Sources, *st)
	}
	return s
}

// Descriptors lists the configured sources in configuration order.
func (a *Aggregator) Descriptors() []sources.Descriptor {
	out := make([]sources.Descriptor, 0, len(a.cfg.Adapters))
	for _, ad := range a.cfg.Adapters {
		out = append(out, ad.Descriptor())
	}
	return out
}

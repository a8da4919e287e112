// Package metrics exposes Prometheus instrumentation for the aggregation cycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/securo-skn/crimefeed/pkg/incident"
)

const Namespace = "crimefeed"

// Cycle outcomes.
const (
	OutcomeLive      = "live"
	OutcomeCache     = "cache"
	OutcomeSimulated = "simulated"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SourceFetchesTotal   *prometheus.CounterVec
	SourceFetchDuration  *prometheus.HistogramVec
	SourceIncidents      *prometheus.GaugeVec
	AggregationsTotal    *prometheus.CounterVec
	IncidentsServed      *prometheus.GaugeVec
	CacheSize            prometheus.Gauge
	ArchiveFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SourceFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "source",
				Name:      "fetches_total",
				Help:      "Source fetch attempts by result",
			},
			[]string{"source", "result"},
		),
		SourceFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "source",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of a single source fetch",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"source"},
		),
		SourceIncidents: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "source",
				Name:      "incidents",
				Help:      "Incidents returned by the last successful fetch",
			},
			[]string{"source"},
		),
		AggregationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "aggregator",
				Name:      "cycles_total",
				Help:      "Aggregation cycles by data outcome",
			},
			[]string{"outcome"},
		),
		IncidentsServed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "aggregator",
				Name:      "incidents",
				Help:      "Incidents in the last aggregation result by data tier",
			},
			[]string{"tier"},
		),
		CacheSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "aggregator",
				Name:      "cache_size",
				Help:      "Incidents held in the live cache",
			},
		),
		ArchiveFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "archive",
				Name:      "failures_total",
				Help:      "Failed archive writes",
			},
		),
	}
}

// ObserveFetch records one adapter run.
func (m *Metrics) ObserveFetch(source string, took time.Duration, count int, err error) {
	if m == nil {
		return
	}
	m.SourceFetchDuration.WithLabelValues(source).Observe(took.Seconds())
	if err != nil {
		m.SourceFetchesTotal.WithLabelValues(source, "error").Inc()
		return
	}
	m.SourceFetchesTotal.WithLabelValues(source, "ok").Inc()
	m.SourceIncidents.WithLabelValues(source).Set(float64(count))
}

// ObserveCycle records the outcome of one aggregation cycle.
func (m *Metrics) ObserveCycle(outcome string, result []incident.Incident, cacheSize int) {
	if m == nil {
		return
	}
	m.AggregationsTotal.WithLabelValues(outcome).Inc()
	for tier, n := range incident.CountByTier(result) {
		m.IncidentsServed.WithLabelValues(string(tier)).Set(float64(n))
	}
	m.CacheSize.Set(float64(cacheSize))
}

// ArchiveFailed counts a failed archive write.
func (m *Metrics) ArchiveFailed() {
	if m == nil {
		return
	}
	m.ArchiveFailuresTotal.Inc()
}

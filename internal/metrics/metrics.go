// Package metrics exposes Prometheus metrics for lookups, live fetches and
// blob cache writes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on its own registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	LookupsTotal           *prometheus.CounterVec   // lookups by region and source (cache, live, error)
	SearchesTotal          *prometheus.CounterVec   // filtered searches by region and result
	LiveFetchFailuresTotal *prometheus.CounterVec   // failed live fetches by region
	LiveFetchDuration      *prometheus.HistogramVec // live fetch latency by region
	CacheWritesTotal       *prometheus.CounterVec   // blob writes by region and outcome
	CacheWriteFailures     *prometheus.CounterVec   // failed blob writes by region
	BlobAgeSeconds         *prometheus.GaugeVec     // age of the stored blob by region
}

// New creates a Metrics instance with Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vetverify_lookups_total",
			Help: "Full-dataset lookups by region and data source",
		}, []string{"region", "source"}),

		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vetverify_searches_total",
			Help: "Filtered searches by region and result",
		}, []string{"region", "result"}),

		LiveFetchFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vetverify_live_fetch_failures_total",
			Help: "Live upstream fetches that failed, by region",
		}, []string{"region"}),

		LiveFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetverify_live_fetch_duration_seconds",
			Help:    "Duration of live upstream fetches by region",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"region"}),

		CacheWritesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vetverify_cache_writes_total",
			Help: "Blob cache writes by region and freshness outcome",
		}, []string{"region", "outcome"}),

		CacheWriteFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vetverify_cache_write_failures_total",
			Help: "Blob cache writes that failed, by region",
		}, []string{"region"}),

		BlobAgeSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vetverify_blob_age_seconds",
			Help: "Age of the stored blob snapshot by region",
		}, []string{"region"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordLookup counts a full-dataset lookup served from source.
func (m *Metrics) RecordLookup(region, source string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(region, source).Inc()
}

// RecordSearch counts a filtered search.
func (m *Metrics) RecordSearch(region, result string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(region, result).Inc()
}

// ObserveLiveFetch records a live fetch's duration and, on failure, counts it.
func (m *Metrics) ObserveLiveFetch(region string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.LiveFetchDuration.WithLabelValues(region).Observe(d.Seconds())
	if err != nil {
		m.LiveFetchFailuresTotal.WithLabelValues(region).Inc()
	}
}

// RecordCacheWrite counts a blob write outcome, or a failure when err is set.
func (m *Metrics) RecordCacheWrite(region, outcome string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CacheWriteFailures.WithLabelValues(region).Inc()
		return
	}
	m.CacheWritesTotal.WithLabelValues(region, outcome).Inc()
}

// SetBlobAge records the age of region's stored blob.
func (m *Metrics) SetBlobAge(region string, age time.Duration) {
	if m == nil {
		return
	}
	m.BlobAgeSeconds.WithLabelValues(region).Set(age.Seconds())
}

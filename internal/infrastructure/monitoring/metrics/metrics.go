// Package metrics defines the engine's Prometheus instrumentation. All
// collectors are registered on a dedicated registry so tests can construct
// isolated instances without global-registration panics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles every collector the engine exports.
type Metrics struct {
	Registry *prometheus.Registry

	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	BatchSize          prometheus.Histogram
	DedupClusterSize   prometheus.Histogram
	FactsReviewTotal   prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New constructs the collector set on a fresh registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termlink",
			Name:      "resolutions_total",
			Help:      "Mention resolutions by outcome status.",
		}, []string{"status"}),
		ResolutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "termlink",
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of resolving a single mention.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"status"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termlink",
			Name:      "cache_lookups_total",
			Help:      "Resolution cache lookups by result.",
		}, []string{"result"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "termlink",
			Name:      "batch_size_mentions",
			Help:      "Mentions per resolution batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		DedupClusterSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "termlink",
			Name:      "dedup_cluster_size",
			Help:      "Supporting facts per canonical fact.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50},
		}),
		FactsReviewTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "termlink",
			Name:      "facts_review_total",
			Help:      "Facts routed to the manual-review side output.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termlink",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "termlink",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ResolutionsTotal,
		m.ResolutionDuration,
		m.CacheLookups,
		m.BatchSize,
		m.DedupClusterSize,
		m.FactsReviewTotal,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveResolution records one finished mention resolution.
func (m *Metrics) ObserveResolution(status string, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(status).Inc()
	m.ResolutionDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveCache records a resolution cache lookup outcome
// ("hit" | "miss" | "shared").
func (m *Metrics) ObserveCache(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

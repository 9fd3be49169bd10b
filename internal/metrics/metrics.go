// Package metrics defines the prometheus collectors exported by the engine
// and the HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups every collector on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	StaleHitsDropped prometheus.Counter
	CachedBookmarks  prometheus.Gauge
	Tombstones       prometheus.Gauge
	LoadedRecords    prometheus.Counter
	IndexFailures    prometheus.Counter
	Unindexed        prometheus.Gauge
	LoadDuration     prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmarks_requests_total",
				Help: "Engine requests processed, by action and status",
			},
			[]string{"action", "status"},
		),
		SearchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookmarks_search_duration_seconds",
				Help:    "Search execution time by strategy",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"strategy"},
		),
		StaleHitsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "bookmarks_stale_hits_dropped_total",
			Help: "Ranked hits discarded because the bookmark was deleted",
		}),
		CachedBookmarks: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookmarks_cached",
			Help: "Bookmarks currently held in the lookup cache",
		}),
		Tombstones: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookmarks_index_tombstones",
			Help: "Deleted bookmarks whose postings remain in the index",
		}),
		LoadedRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "bookmarks_bulk_loaded_total",
			Help: "Records indexed by the startup bulk load",
		}),
		IndexFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "bookmarks_index_failures_total",
			Help: "Stored bookmarks whose index write failed",
		}),
		Unindexed: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookmarks_unindexed",
			Help: "Cached bookmarks waiting to be indexed again",
		}),
		LoadDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookmarks_bulk_load_seconds",
			Help: "Duration of the last bulk load",
		}),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmarks_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TileRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_requests_total",
		Help: "Total number of tile requests",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_hits_total",
		Help: "Total number of tile cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_misses_total",
		Help: "Total number of tile cache misses",
	})

	CacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_stores_total",
		Help: "Total number of tile cache store operations",
	})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_invalidations_total",
		Help: "Total number of cache entries removed by explicit invalidation",
	})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of upstream tile provider requests",
	}, []string{"provider"})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_errors_total",
		Help: "Total number of failed upstream requests",
	}, []string{"provider"})

	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "upstream_latency_seconds",
		Help:    "Latency of upstream tile fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

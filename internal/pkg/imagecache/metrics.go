package imagecache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_cache_hits_total",
		Help: "Number of image cache hits",
	})

	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_cache_misses_total",
		Help: "Number of image cache misses",
	})

	cacheFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_cache_fetch_failures_total",
		Help: "Number of image downloads that fell back to the remote url",
	})

	cacheItemsCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "image_cache_items_count",
		Help: "Number of images held in the cache",
	})
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(cacheFailures)
	prometheus.MustRegister(cacheItemsCount)
}

// createTestMetrics creates new metrics with a custom registry for testing
func createTestMetrics() (*prometheus.Registry, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Gauge) {
	reg := prometheus.NewRegistry()

	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "image_cache_hits_total", Help: "hits"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "image_cache_misses_total", Help: "misses"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "image_cache_fetch_failures_total", Help: "failures"})
	count := prometheus.NewGauge(prometheus.GaugeOpts{Name: "image_cache_items_count", Help: "items"})

	reg.MustRegister(hits, misses, failures, count)

	return reg, hits, misses, failures, count
}

// Package metrics collects and exposes Prometheus metrics for the
// notes service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records service metrics.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notes_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_cache_hits_total",
			Help: "Cache hits by key namespace",
		}, []string{"namespace"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_cache_misses_total",
			Help: "Cache misses by key namespace",
		}, []string{"namespace"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.cacheHits,
		c.cacheMisses,
	)
	return c
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit for a key namespace.
func (c *Collector) RecordCacheHit(namespace string) {
	c.cacheHits.WithLabelValues(namespace).Inc()
}

// RecordCacheMiss records a cache miss for a key namespace.
func (c *Collector) RecordCacheMiss(namespace string) {
	c.cacheMisses.WithLabelValues(namespace).Inc()
}

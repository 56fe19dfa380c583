// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DownloadsTotal counts simulated offline downloads by outcome
	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globeguru_offline_downloads_total",
		Help: "Simulated offline downloads by outcome (started, completed, rejected, deleted).",
	}, []string{"outcome"})

	// ActiveDownloads tracks downloads currently in progress across all sessions
	ActiveDownloads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "globeguru_offline_active_downloads",
		Help: "Simulated downloads currently in progress.",
	})

	// ChatRepliesTotal counts scripted chat replies by matched rule
	ChatRepliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globeguru_chat_replies_total",
		Help: "Scripted chat replies delivered, by matched rule.",
	}, []string{"rule"})

	// GeoLookupsTotal counts geolocation attempts by provider and result
	GeoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globeguru_geo_lookups_total",
		Help: "Geolocation lookups by provider and result.",
	}, []string{"provider", "result"})

	// GeoCacheHitsTotal counts IP lookups answered from the cache
	GeoCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globeguru_geo_cache_hits_total",
		Help: "IP geolocation lookups served from the LRU cache.",
	})

	// GeoCacheMissesTotal counts IP lookups that went to the remote service
	GeoCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globeguru_geo_cache_misses_total",
		Help: "IP geolocation lookups that required a remote call.",
	})

	// ActiveSessions tracks visitor sessions held in memory
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "globeguru_sessions_active",
		Help: "Visitor sessions currently held in memory.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globeguru_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "globeguru_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Middleware records request count and latency per route pattern.
// The route pattern keeps label cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

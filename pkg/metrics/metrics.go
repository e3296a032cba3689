package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animov_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"service", "method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animov_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	// Third-party catalogs
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animov_catalog_requests_total",
			Help: "Outbound catalog API requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animov_catalog_cache_hits_total",
			Help: "Catalog detail lookups served from Redis",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animov_catalog_cache_misses_total",
			Help: "Catalog detail lookups that went upstream",
		},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animov_events_published_total",
			Help: "Domain events published to RabbitMQ",
		},
		[]string{"type", "outcome"},
	)

	NotificationsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animov_notifications_stored_total",
			Help: "Notifications written to user inboxes",
		},
		[]string{"type"},
	)
)

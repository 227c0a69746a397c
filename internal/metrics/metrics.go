// Package metrics defines Prometheus metrics for intellisearch-client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "isl"

// Lookup metrics.
var (
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookups_total",
		Help:      "Total number of lookups by service and outcome.",
	}, []string{"service", "outcome"})

	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lookup_duration_seconds",
		Help:      "Duration of lookup HTTP calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service"})
)

// Deferral and trigger metrics.
var (
	DeferredUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deferred_updates_total",
		Help:      "Total number of updates queued while deferring.",
	}, []string{"service"})

	DiscardedUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discarded_updates_total",
		Help:      "Total number of pending updates dropped when deferral ended with skipPending.",
	}, []string{"service"})

	ScheduledTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_triggers_total",
		Help:      "Total number of delayed triggers armed.",
	}, []string{"service"})

	SupersededTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "superseded_triggers_total",
		Help:      "Total number of delayed triggers cancelled before firing.",
	}, []string{"service"})
)

// Auth metrics.
var (
	TokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of authentication token refreshes by outcome.",
	}, []string{"outcome"})
)

// Mock server HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

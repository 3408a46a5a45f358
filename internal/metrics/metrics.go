// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package metrics provides Prometheus instrumentation for the trending
// read path, cache behavior, and the invalidation control plane.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Trending cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trending_cache_hits_total",
			Help: "Total number of trending page cache hits",
		},
		[]string{"window"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trending_cache_misses_total",
			Help: "Total number of trending page cache misses",
		},
		[]string{"window"},
	)

	CacheCorruptions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_cache_corrupted_entries_total",
			Help: "Total number of cache entries deleted after failing to deserialize",
		},
	)

	// Invalidation metrics
	Invalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trending_invalidations_total",
			Help: "Total number of cache invalidation runs",
		},
		[]string{"time_range", "source"}, // source: webhook, relay, admin
	)

	InvalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_invalidated_keys_total",
			Help: "Total number of cache keys cleared by invalidations",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_webhook_rate_limited_total",
			Help: "Total number of webhook requests rejected by the rate limiter",
		},
	)

	Unauthorized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_webhook_unauthorized_total",
			Help: "Total number of webhook requests rejected by authentication",
		},
	)

	// Score query metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trending_query_duration_seconds",
			Help:    "Duration of trending aggregate queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"window"},
	)

	QueryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_query_errors_total",
			Help: "Total number of failed trending aggregate queries",
		},
	)

	// Notification metrics
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_notifications_published_total",
			Help: "Total number of real-time notifications published",
		},
		[]string{"event"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_websocket_clients",
			Help: "Current number of connected websocket clients",
		},
	)
)

// RecordCacheHit records a cache hit for a window.
func RecordCacheHit(window string) {
	CacheHits.WithLabelValues(window).Inc()
}

// RecordCacheMiss records a cache miss for a window.
func RecordCacheMiss(window string) {
	CacheMisses.WithLabelValues(window).Inc()
}

// RecordCacheCorruption records a self-healed corrupted entry.
func RecordCacheCorruption() {
	CacheCorruptions.Inc()
}

// RecordInvalidation records one invalidation run and its cleared-key count.
func RecordInvalidation(timeRange, source string, keys int) {
	Invalidations.WithLabelValues(timeRange, source).Inc()
	InvalidatedKeys.Add(float64(keys))
}

// RecordQuery records an aggregate query execution.
func RecordQuery(window string, duration time.Duration, err error) {
	QueryDuration.WithLabelValues(window).Observe(duration.Seconds())
	if err != nil {
		QueryErrors.Inc()
	}
}

// RecordNotification records one published real-time notification.
func RecordNotification(event string) {
	NotificationsPublished.WithLabelValues(event).Inc()
}

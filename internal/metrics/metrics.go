// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

// Package metrics provides Prometheus instrumentation for the
// recommendation service: API latency and throughput, catalog scan sizes,
// embedding cache efficiency, circuit breaker state, and batch progress.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artscape_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artscape_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artscape_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Ranking Metrics
	RankingCandidatesScanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artscape_ranking_candidates_scanned",
			Help:    "Number of candidates compared per ranking request",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8), // 10 to ~160k
		},
	)

	RankingSkippedCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artscape_ranking_skipped_candidates_total",
			Help: "Total candidates skipped during ranking due to malformed embeddings",
		},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artscape_recommendations_served_total",
			Help: "Total recommendation requests served, by query mode",
		},
		[]string{"mode"}, // "similar", "text", "personalized"
	)

	// Embedding Cache Metrics
	EmbedCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artscape_embed_cache_hits_total",
			Help: "Total embedding cache hits",
		},
	)

	EmbedCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artscape_embed_cache_misses_total",
			Help: "Total embedding cache misses",
		},
	)

	// Circuit Breaker Metrics (embedding service)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artscape_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artscape_circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "outcome"}, // "success", "failure", "rejected"
	)

	// Batch Embedding Metrics
	BatchItemsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artscape_batch_items_processed_total",
			Help: "Total artworks successfully embedded by batch runs",
		},
	)

	BatchItemsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artscape_batch_items_failed_total",
			Help: "Total artworks that failed embedding in batch runs",
		},
	)

	BatchLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artscape_batch_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful batch run",
		},
	)

	// Catalog Metrics
	ArtworksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artscape_artworks_total",
			Help: "Number of artworks in the store",
		},
	)

	ArtworksEmbedded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artscape_artworks_embedded",
			Help: "Number of artworks with a stored embedding",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetArtworkCounts updates the catalog size gauges.
func SetArtworkCounts(total, embedded int) {
	ArtworksTotal.Set(float64(total))
	ArtworksEmbedded.Set(float64(embedded))
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package metrics provides Prometheus instrumentation for Outfitd:
// resilience layer tier usage and circuit breaker state, recommendation
// latency, feedback persistence queue depth, and API throughput.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resilience Layer Metrics

	// FallbackTierUsage counts which degradation tier satisfied each call.
	FallbackTierUsage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_tier_usage_total",
			Help: "Total calls satisfied per fallback tier",
		},
		[]string{"service", "tier"}, // tier: "live", "cached", "degraded", "static_default"
	)

	// RetryAttempts counts retry attempts per external service.
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_retry_attempts_total",
			Help: "Total retry attempts per external service",
		},
		[]string{"service"},
	)

	// CircuitBreakerState reports breaker state per service
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resilience_circuit_state",
			Help: "Circuit breaker state per service (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)

	// CircuitBreakerTrips counts circuit open transitions per service.
	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_circuit_trips_total",
			Help: "Total circuit breaker open transitions per service",
		},
		[]string{"service"},
	)

	// ExhaustedCalls counts calls where every fallback tier failed.
	ExhaustedCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_exhausted_total",
			Help: "Total calls where all fallback tiers failed",
		},
		[]string{"service"},
	)

	// Recommendation Metrics

	// RecommendDuration measures end-to-end recommendation latency.
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end outfit recommendation latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// RecommendRequests counts recommendation requests by outcome.
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "insufficient_items", "relaxed", "error"
	)

	// CandidatesGenerated tracks the candidate pool size per request.
	CandidatesGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates_generated",
			Help:    "Outfit candidates surviving both gates per request",
			Buckets: []float64{0, 1, 3, 10, 30, 100, 300, 1000},
		},
	)

	// Feedback Metrics

	// FeedbackApplied counts feedback events applied to style profiles.
	FeedbackApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_applied_total",
			Help: "Total feedback events applied to style profiles",
		},
	)

	// FeedbackPendingWrites reports profiles queued awaiting persistence.
	FeedbackPendingWrites = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedback_pending_writes",
			Help: "Style profiles queued awaiting a successful persist",
		},
	)

	// Notification Metrics

	// NotificationsDispatched counts dispatched ready-notifications.
	NotificationsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_dispatched_total",
			Help: "Total recommendation-ready notifications dispatched",
		},
	)

	// API Metrics

	// APIRequestsTotal counts API requests.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// APIRequestDuration measures API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

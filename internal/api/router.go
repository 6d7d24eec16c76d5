// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package api exposes the HTTP surface: recommendations, feedback,
// wardrobe administration, health, and metrics.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/metrics"
)

// RouterConfig tunes the shared middleware stack.
type RouterConfig struct {
	RateLimit   int
	RateWindow  time.Duration
	CORSOrigins []string
}

// NewRouter builds the chi router around the handlers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(logger zerolog.Logger, h *Handlers, cfg RouterConfig) *chi.Mux {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimit, cfg.RateWindow))

		r.Get("/recommendations", h.Recommendations)
		r.Post("/feedback", h.Feedback)

		r.Route("/wardrobe/{userID}/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Put("/{itemID}", h.PutItem)
			r.Delete("/{itemID}", h.DeleteItem)
		})
	})

	return r
}

// requestLogger logs each request with latency and records API
// metrics.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			metrics.APIRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
			metrics.APIRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(elapsed.Seconds())

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", elapsed).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("request handled")
		})
	}
}

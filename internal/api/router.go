// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

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

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
	"github.com/trendora/trendora/internal/models"
)

// Router builds the chi router with the full middleware stack and every
// route mounted.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "x-api-key", "x-trendora-signature"},
		MaxAge:         86400,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/trending", s.handleGetTrending)
		r.Get("/trending/last-invalidation", s.handleLastInvalidation)
		r.Post("/videos/{videoID}/view", s.handleRecordView)

		r.Route("/webhooks", func(r chi.Router) {
			// One shared bucket for all invalidation callers. The limit
			// protects the cache from invalidation storms, not any
			// particular client, so keying by IP would defeat it.
			r.With(s.invalidationRateLimit()).
				Post("/invalidate-trending", s.handleInvalidateTrending)
			r.Post("/video-deleted", s.handleVideoDeleted)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/admin/trending-schedules", s.handleSetupSchedules)
			r.Get("/admin/trending-schedules", s.handleCheckSchedules)
			r.Delete("/admin/trending-schedules", s.handleRemoveSchedule)
		})
	})

	return r
}

// invalidationRateLimit returns the sliding-window limiter for the
// invalidation webhook.
func (s *Server) invalidationRateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(
		s.cfg.RateLimit.Requests,
		s.cfg.RateLimit.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return "trending-invalidation", nil
		}),
		httprate.WithLimitHandler(s.handleRateLimited),
	)
}

// handleRateLimited answers 429 with the bucket state so callers can back
// off until the window resets.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.Inc()
	logging.Warn().Str("path", r.URL.Path).Msg("Invalidation webhook rate limited")

	reset := time.Now().Add(s.cfg.RateLimit.Window).Unix()
	if v, err := strconv.ParseInt(w.Header().Get("X-RateLimit-Reset"), 10, 64); err == nil {
		reset = v
	}
	respondJSON(w, http.StatusTooManyRequests, models.ErrorResponse{
		Error:     "Rate limit exceeded",
		Limit:     s.cfg.RateLimit.Requests,
		Remaining: 0,
		Reset:     reset,
	})
}

// requireAuth gates the admin surface with the webhook credential schemes.
// Admin calls carry no body worth signing, so in practice this is the API
// key path.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.authn.Authorize(r, nil); err != nil {
			metrics.Unauthorized.Inc()
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one structured log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}

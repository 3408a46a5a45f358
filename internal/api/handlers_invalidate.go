// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
	"github.com/trendora/trendora/internal/models"
)

// handleInvalidateTrending clears cached trending pages for the requested
// time range. Called by the scheduling service on its recurring triggers and
// by internal services needing an immediate refresh.
//
// The raw body is read before authentication because the signature scheme
// covers it. A missing or unparseable body falls back to "all-ranges":
// when in doubt, clear more.
func (s *Server) handleInvalidateTrending(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := s.authn.Authorize(r, body); err != nil {
		metrics.Unauthorized.Inc()
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	timeRange := models.WindowAllRanges
	var req models.InvalidateRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			logging.Warn().Err(err).Msg("Unparseable invalidation body, defaulting to all-ranges")
		} else if req.TimeRange != "" {
			timeRange = req.TimeRange
		}
	}

	if !validTimeRange(timeRange) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid timeRange %q: must be day, week, month, all, or all-ranges", timeRange))
		return
	}

	cleared := s.trending.ResetCache(r.Context(), timeRange)
	metrics.RecordInvalidation(timeRange, "webhook", cleared)

	respondJSON(w, http.StatusOK, models.InvalidateResponse{
		Success:   true,
		Message:   fmt.Sprintf("Trending cache invalidated: %d keys cleared", cleared),
		TimeRange: timeRange,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// validTimeRange reports whether s names a query window or the all-ranges
// sweep.
func validTimeRange(s string) bool {
	if s == models.WindowAllRanges {
		return true
	}
	_, err := models.ParseWindow(s)
	return err == nil
}

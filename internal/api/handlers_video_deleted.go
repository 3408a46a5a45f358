// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
	"github.com/trendora/trendora/internal/models"
	"github.com/trendora/trendora/internal/notify"
)

// handleVideoDeleted relays a video deletion from the processing pipeline:
// notify real-time clients, drop cached trending pages immediately, and
// request a backup invalidation through the scheduling service.
//
// The three steps are independent and best-effort. Once the event parses,
// the relay always acknowledges success: the pipeline must never retry a
// deletion because a notification hiccuped, and the six-hourly all-ranges
// sweep bounds how long any missed step can matter.
func (s *Server) handleVideoDeleted(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var event models.VideoDeletedEvent
	if err := json.Unmarshal(body, &event); err != nil || event.VideoID == "" {
		respondError(w, http.StatusBadRequest, "videoId is required")
		return
	}

	ctx := r.Context()
	log := logging.With().Str("video_id", event.VideoID).Logger()

	if err := s.notifier.Publish(ctx, notify.EventVideoDeleted, event); err != nil {
		log.Warn().Err(err).Msg("Failed to publish video-deleted notification")
	}

	cleared := s.trending.DeleteAll(ctx)
	metrics.RecordInvalidation(models.WindowAllRanges, "relay", cleared)
	log.Info().Int("cleared", cleared).Msg("Trending cache cleared after video deletion")

	if _, err := s.schedules.RequestInvalidation(ctx, models.WindowAllRanges, "video_deleted:"+event.VideoID); err != nil {
		log.Warn().Err(err).Msg("Failed to request backup invalidation")
	}

	respondJSON(w, http.StatusOK, models.EventResponse{
		Success:   true,
		Message:   "Video deletion processed",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trendora/trendora/internal/models"
	"github.com/trendora/trendora/internal/validation"
)

// defaultPageSize is the page size when the limit parameter is absent.
const defaultPageSize = 20

// handleGetTrending serves one ranked page.
//
// Query parameters: timeRange (day|week|month|all, default week), limit
// (1..50, default 20), cursor (exclusive upper score bound for the next
// page). A zero cursor means "from the top" and is treated as absent.
func (s *Server) handleGetTrending(w http.ResponseWriter, r *http.Request) {
	cursor := queryInt64Ptr(r, "cursor")
	if cursor != nil && *cursor == 0 {
		cursor = nil
	}

	req := models.TrendingRequest{
		TimeRange: r.URL.Query().Get("timeRange"),
		Limit:     queryInt(r, "limit", defaultPageSize),
		Cursor:    cursor,
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	window := models.WindowWeek
	if req.TimeRange != "" {
		window = models.Window(req.TimeRange)
	}

	page, err := s.trending.GetTrendingPage(r.Context(), window, req.Limit, req.Cursor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute trending page")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// handleLastInvalidation reports when the trending cache was last cleared.
func (s *Server) handleLastInvalidation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.LastInvalidation{
		Timestamp: s.trending.LastInvalidation(r.Context()),
	})
}

// handleRecordView counts one view for a video, de-duplicated per viewer
// within the dedup TTL. The viewer identity comes from the x-viewer-id
// header set by the platform gateway.
func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	viewerID := r.Header.Get("x-viewer-id")
	if viewerID == "" {
		respondError(w, http.StatusBadRequest, "x-viewer-id header is required")
		return
	}

	counted := s.views.RecordView(r.Context(), videoID, viewerID)
	respondJSON(w, http.StatusOK, map[string]bool{"counted": counted})
}

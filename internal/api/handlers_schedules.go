// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package api

import (
	"net/http"
)

// handleSetupSchedules idempotently registers the recurring invalidation
// triggers with the scheduling service. Safe to call repeatedly; fixed
// schedule identifiers make re-registration overwrite in place.
func (s *Server) handleSetupSchedules(w http.ResponseWriter, r *http.Request) {
	result := s.schedules.SetupSchedules(r.Context())
	status := http.StatusOK
	if !result.Success {
		// The scheduling service is the failing party, not the caller.
		status = http.StatusBadGateway
	}
	respondJSON(w, status, result)
}

// handleCheckSchedules lists the invalidation triggers currently registered.
func (s *Server) handleCheckSchedules(w http.ResponseWriter, r *http.Request) {
	result := s.schedules.CheckSchedules(r.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, result)
}

// handleRemoveSchedule deletes one trigger named by the scheduleId query
// parameter.
func (s *Server) handleRemoveSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID := r.URL.Query().Get("scheduleId")
	if scheduleID == "" {
		respondError(w, http.StatusBadRequest, "scheduleId query parameter is required")
		return
	}

	result := s.schedules.RemoveSchedule(r.Context(), scheduleID)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, result)
}

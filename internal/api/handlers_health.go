// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package api

import (
	"net/http"
	"time"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/models"
	ws "github.com/trendora/trendora/internal/websocket"
)

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleWebsocket upgrades the connection and registers it with the hub for
// real-time event delivery.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Real-time delivery is disabled")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logging.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}
	ws.NewClient(s.hub, conn).Start()
}

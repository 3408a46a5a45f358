// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package models

import "time"

// InvalidateRequest is the body of the invalidation webhook. TimeRange
// accepts the four query windows plus "all-ranges". A missing or unparseable
// body defaults to "all-ranges": when in doubt we clear more, not less.
type InvalidateRequest struct {
	TimeRange string `json:"timeRange"`
	// Reason is informational only, e.g. "video_deleted:<id>" on the
	// backup invalidation path.
	Reason string `json:"reason,omitempty"`
}

// InvalidateResponse reports a completed cache invalidation.
type InvalidateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TimeRange string `json:"timeRange"`
	Timestamp string `json:"timestamp"`
}

// VideoDeletedEvent is the content-lifecycle event delivered to the relay
// when the processing pipeline removes a video.
type VideoDeletedEvent struct {
	VideoID string `json:"videoId"`
}

// EventResponse acknowledges a processed lifecycle event. The relay answers
// success once the event is parsed regardless of downstream outcomes.
type EventResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the uniform error body for control-plane endpoints.
type ErrorResponse struct {
	Error     string `json:"error"`
	Limit     int    `json:"limit,omitempty"`
	Remaining int    `json:"remaining,omitempty"`
	Reset     int64  `json:"reset,omitempty"`
}

// TrendingRequest captures the read-path query parameters after validation.
type TrendingRequest struct {
	TimeRange string `json:"timeRange" validate:"omitempty,oneof=day week month all"`
	Limit     int    `json:"limit" validate:"min=1,max=50"`
	Cursor    *int64 `json:"cursor" validate:"omitempty,min=1"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// LastInvalidation reports the audit timestamp recorded by the most recent
// cache invalidation, if any ran since the cache was created.
type LastInvalidation struct {
	Timestamp *time.Time `json:"timestamp"`
}

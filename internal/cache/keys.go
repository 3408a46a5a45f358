// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package cache

import (
	"fmt"

	"github.com/trendora/trendora/internal/models"
)

// Persisted key layout. One cache entry exists per unique
// (window, limit, cursor) page request; the fan-out trades memory for never
// recomputing arbitrarily large result sets.
const (
	// TrendingPrefix namespaces every trending page key.
	TrendingPrefix = "trending:"

	// MetaTrendingKeys is the invalidation-group registry: the list of
	// trending keys written since the last reset. Stored without TTL.
	MetaTrendingKeys = "meta:trending-keys"

	// LastInvalidationKey holds the RFC3339 timestamp of the most recent
	// invalidation, for auditing.
	LastInvalidationKey = "trending:last_invalidation"

	// ViewDedupPrefix namespaces the short-TTL (videoID, viewerID) view
	// de-duplication markers.
	ViewDedupPrefix = "views:dedup:"
)

// TrendingKey builds the page cache key trending:<window>:<limit>:<cursor>.
// An absent cursor is encoded as 0, matching first-page requests.
func TrendingKey(window models.Window, limit int, cursor *int64) string {
	var c int64
	if cursor != nil {
		c = *cursor
	}
	return fmt.Sprintf("%s%s:%d:%d", TrendingPrefix, window, limit, c)
}

// WindowPrefix returns the key prefix covering one window's pages.
func WindowPrefix(window models.Window) string {
	return fmt.Sprintf("%s%s:", TrendingPrefix, window)
}

// ViewDedupKey builds the marker key for one (video, viewer) pair.
func ViewDedupKey(videoID, viewerID string) string {
	return fmt.Sprintf("%s%s:%s", ViewDedupPrefix, videoID, viewerID)
}

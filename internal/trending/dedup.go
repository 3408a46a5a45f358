// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package trending

import (
	"context"
	"time"

	"github.com/trendora/trendora/internal/cache"
	"github.com/trendora/trendora/internal/logging"
)

// ViewDedupTTL bounds how long a (video, viewer) pair suppresses repeat view
// counting. Thirty minutes matches one viewing session.
const ViewDedupTTL = 30 * time.Minute

// ViewRecorder increments a video's view counter, if anything owns one.
// database.DB satisfies this.
type ViewRecorder interface {
	IncrementViewCount(ctx context.Context, videoID string) error
}

// ViewDedup suppresses duplicate view counts per (video, viewer) pair using
// short-TTL markers in the shared cache store. Keeping the set external
// rather than in process memory makes de-duplication correct across
// horizontally scaled instances.
type ViewDedup struct {
	store    *cache.SafeStore
	recorder ViewRecorder
}

// NewViewDedup wires the dedup set to the cache store and view recorder.
func NewViewDedup(store *cache.SafeStore, recorder ViewRecorder) *ViewDedup {
	return &ViewDedup{store: store, recorder: recorder}
}

// RecordView counts one view for videoID by viewerID unless the pair was
// seen within ViewDedupTTL. Returns whether the view was counted.
//
// The check-then-set is not atomic; two simultaneous first views can both
// count. A double-counted view is harmless next to the cost of a
// coordination round-trip on every playback.
func (d *ViewDedup) RecordView(ctx context.Context, videoID, viewerID string) bool {
	key := cache.ViewDedupKey(videoID, viewerID)
	if d.store.Exists(ctx, key) {
		return false
	}

	if err := d.recorder.IncrementViewCount(ctx, videoID); err != nil {
		logging.Err(err).Str("video_id", videoID).Msg("Failed to increment view count")
		return false
	}

	d.store.SetJSON(ctx, key, true, ViewDedupTTL)
	return true
}

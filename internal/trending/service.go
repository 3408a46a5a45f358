// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package trending composes the score query and the cache store into the
// trending feed: cached page reads with per-window TTLs, group-wide
// invalidation, and cross-instance view de-duplication.
package trending

import (
	"context"
	"fmt"
	"time"

	"github.com/trendora/trendora/internal/cache"
	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
	"github.com/trendora/trendora/internal/models"
)

// ScoreSource computes a ranked trending slice for one window. Implemented
// by database.DB; faked in tests.
type ScoreSource interface {
	FetchTrending(ctx context.Context, window models.Window, limit int, cursor *int64) ([]models.TrendingEntry, bool, error)
}

// Service serves trending pages from the cache, computing and populating on
// miss. There is no locking across "miss, compute, write": a repopulation
// racing an invalidation may re-insert a briefly stale page, which the short
// per-window TTLs bound.
type Service struct {
	source ScoreSource
	store  *cache.SafeStore
	group  *cache.Group
}

// NewService wires the score source and cache store together.
func NewService(source ScoreSource, store *cache.SafeStore) *Service {
	return &Service{
		source: source,
		store:  store,
		group:  cache.NewGroup(store, cache.MetaTrendingKeys),
	}
}

// GetTrendingPage returns the ranked page for (window, limit, cursor).
//
// A cached page with at least one entry is returned as-is; an absent key and
// a present-but-empty payload are both treated as a miss so that transient
// empty writes never pin "zero results" for a full TTL. On miss the page is
// recomputed, cached with the window's TTL, and its key registered in the
// invalidation group (best-effort).
func (s *Service) GetTrendingPage(ctx context.Context, window models.Window, limit int, cursor *int64) (models.TrendingPage, error) {
	key := cache.TrendingKey(window, limit, cursor)

	var page models.TrendingPage
	if s.store.GetJSON(ctx, key, &page) && len(page.Entries) > 0 {
		metrics.RecordCacheHit(string(window))
		logging.Debug().Str("key", key).Msg("Trending cache hit")
		return page, nil
	}
	metrics.RecordCacheMiss(string(window))

	entries, hasMore, err := s.source.FetchTrending(ctx, window, limit, cursor)
	if err != nil {
		// No retry here: retrying during a data-store outage only
		// amplifies load.
		return models.TrendingPage{}, fmt.Errorf("fetch trending %s: %w", window, err)
	}

	page = models.TrendingPage{Entries: entries}
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1].TrendingScore
		page.NextCursor = &last
	}

	if s.store.SetJSON(ctx, key, page, window.TTL()) {
		s.group.Register(ctx, key)
		logging.Debug().Str("key", key).Dur("ttl", window.TTL()).Msg("Trending page cached")
	}
	return page, nil
}

// ResetCache clears cached pages for one window, or the whole trending
// namespace for "all-ranges", trims the group registry accordingly, and
// stamps the invalidation time. Returns the number of keys cleared.
//
// Cache faults degrade to a zero count; invalidation is idempotent and the
// next scheduled run will catch anything missed.
func (s *Service) ResetCache(ctx context.Context, timeRange string) int {
	var cleared int
	if timeRange == models.WindowAllRanges {
		cleared = s.store.DeleteByPrefix(ctx, cache.TrendingPrefix)
		s.group.Reset(ctx)
	} else {
		prefix := cache.WindowPrefix(models.Window(timeRange))
		cleared = s.store.DeleteByPrefix(ctx, prefix)
		s.group.TrimPrefix(ctx, prefix)
	}

	now := time.Now().UTC()
	s.store.SetJSON(ctx, cache.LastInvalidationKey, now.Format(time.RFC3339), 0)

	logging.Info().
		Str("time_range", timeRange).
		Int("cleared", cleared).
		Msg("Trending cache invalidated")
	return cleared
}

// DeleteAll removes every trending page immediately. Used by the event
// relay's direct invalidation path; unlike ResetCache it does not stamp the
// audit key, the backup webhook call does that.
func (s *Service) DeleteAll(ctx context.Context) int {
	cleared := s.store.DeleteByPrefix(ctx, cache.TrendingPrefix)
	s.group.Reset(ctx)
	return cleared
}

// LastInvalidation returns the audit timestamp of the most recent
// invalidation, or nil if none was recorded.
func (s *Service) LastInvalidation(ctx context.Context) *time.Time {
	var stamp string
	if !s.store.GetJSON(ctx, cache.LastInvalidationKey, &stamp) {
		return nil
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil
	}
	return &t
}

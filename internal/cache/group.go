// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package cache

import (
	"context"
	"strings"

	"github.com/trendora/trendora/internal/logging"
)

// Group maintains a registry ("meta key") of cache keys belonging to a
// logical group, enabling group-wide invalidation without a full scan.
//
// The registry is a hint, not a source of truth: registration is best-effort
// and carries no atomicity guarantee versus the keys it tracks. Prefix-scan
// deletion remains the authoritative fallback, so a missed registration only
// costs speed, never correctness.
type Group struct {
	store   *SafeStore
	metaKey string
}

// NewGroup creates a registry stored under metaKey.
func NewGroup(store *SafeStore, metaKey string) *Group {
	return &Group{store: store, metaKey: metaKey}
}

// Register appends key to the registry if not already present. Failures are
// logged and swallowed; a page write must never fail because its bookkeeping
// did.
func (g *Group) Register(ctx context.Context, key string) {
	var keys []string
	g.store.GetJSON(ctx, g.metaKey, &keys)

	for _, existing := range keys {
		if existing == key {
			return
		}
	}
	keys = append(keys, key)

	// Meta keys live without TTL; they are trimmed on invalidation.
	if !g.store.SetJSON(ctx, g.metaKey, keys, 0) {
		logging.Warn().Str("key", key).Msg("Failed to register cache key in group registry")
	}
}

// Keys returns the registered keys. May under- or over-count transiently.
func (g *Group) Keys(ctx context.Context) []string {
	var keys []string
	g.store.GetJSON(ctx, g.metaKey, &keys)
	return keys
}

// Reset replaces the registry with an empty list.
func (g *Group) Reset(ctx context.Context) {
	g.store.SetJSON(ctx, g.metaKey, []string{}, 0)
}

// TrimPrefix drops registered keys matching prefix, keeping the rest. Used
// after a single-window invalidation so the registry stops referencing
// deleted pages.
func (g *Group) TrimPrefix(ctx context.Context, prefix string) {
	var keys []string
	if !g.store.GetJSON(ctx, g.metaKey, &keys) {
		return
	}

	kept := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			kept = append(kept, key)
		}
	}
	if len(kept) == len(keys) {
		return
	}
	g.store.SetJSON(ctx, g.metaKey, kept, 0)
}

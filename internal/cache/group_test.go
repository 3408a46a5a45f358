// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package cache

import (
	"context"
	"testing"
)

func TestGroupRegisterDeduplicates(t *testing.T) {
	store := NewSafeStore(newTestStore(t))
	group := NewGroup(store, MetaTrendingKeys)
	ctx := context.Background()

	group.Register(ctx, "trending:day:10:0")
	group.Register(ctx, "trending:day:10:0")
	group.Register(ctx, "trending:week:10:0")

	keys := group.Keys(ctx)
	if len(keys) != 2 {
		t.Fatalf("Keys = %v, want 2 entries", keys)
	}
}

func TestGroupReset(t *testing.T) {
	store := NewSafeStore(newTestStore(t))
	group := NewGroup(store, MetaTrendingKeys)
	ctx := context.Background()

	group.Register(ctx, "trending:day:10:0")
	group.Reset(ctx)

	if keys := group.Keys(ctx); len(keys) != 0 {
		t.Errorf("Keys after Reset = %v, want empty", keys)
	}
}

func TestGroupTrimPrefix(t *testing.T) {
	store := NewSafeStore(newTestStore(t))
	group := NewGroup(store, MetaTrendingKeys)
	ctx := context.Background()

	group.Register(ctx, "trending:day:10:0")
	group.Register(ctx, "trending:day:20:300")
	group.Register(ctx, "trending:week:10:0")

	group.TrimPrefix(ctx, WindowPrefix("day"))

	keys := group.Keys(ctx)
	if len(keys) != 1 || keys[0] != "trending:week:10:0" {
		t.Errorf("Keys after TrimPrefix = %v, want [trending:week:10:0]", keys)
	}
}

func TestTrendingKeyLayout(t *testing.T) {
	cursor := int64(300)
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"no cursor", TrendingKey("day", 10, nil), "trending:day:10:0"},
		{"with cursor", TrendingKey("week", 20, &cursor), "trending:week:20:300"},
		{"window prefix", WindowPrefix("month"), "trending:month:"},
		{"view dedup", ViewDedupKey("v1", "u1"), "views:dedup:v1:u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/trendora/trendora/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	exec := func(query string, args ...interface{}) {
		t.Helper()
		if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	exec(`INSERT INTO users (id, name, image_url) VALUES (?, ?, ?)`, "u1", "Creator One", "https://img/u1")

	videos := []struct {
		id         string
		createdAt  time.Time
		viewCount  int64
		visibility string
	}{
		{"v1", now.Add(-time.Hour), 100, "public"},       // +10 likes, 5 comments = 200
		{"v2", now.Add(-2 * time.Hour), 300, "public"},   // no engagement = 300
		{"v3", now.Add(-3 * time.Hour), 100, "public"},   // no engagement = 100
		{"v4", now.Add(-time.Hour), 10000, "private"},    // excluded: not public
		{"v5", now.Add(-40 * 24 * time.Hour), 5000, "public"}, // outside short windows
	}
	for _, v := range videos {
		exec(`INSERT INTO videos (id, title, thumbnail_url, created_at, view_count, duration, visibility, user_id, category_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.id, "Title "+v.id, "", v.createdAt, v.viewCount, 120, v.visibility, "u1", "")
	}

	for i := 0; i < 10; i++ {
		exec(`INSERT INTO video_likes (video_id, user_id, is_like, created_at) VALUES (?, ?, ?, ?)`,
			"v1", fmt.Sprintf("liker-%d", i), true, now)
	}
	// A dislike never contributes to the score.
	exec(`INSERT INTO video_likes (video_id, user_id, is_like, created_at) VALUES (?, ?, ?, ?)`,
		"v1", "hater-1", false, now)

	for i := 0; i < 5; i++ {
		exec(`INSERT INTO comments (id, video_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
			fmt.Sprintf("c-%d", i), "v1", "u1", now)
	}
}

func TestFetchTrendingRanksByScore(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	ctx := context.Background()

	entries, hasMore, err := db.FetchTrending(ctx, models.WindowDay, 10, nil)
	if err != nil {
		t.Fatalf("FetchTrending: %v", err)
	}
	if hasMore {
		t.Error("hasMore = true with all rows returned")
	}

	wantOrder := []struct {
		id    string
		score int64
	}{
		{"v2", 300},
		{"v1", 200},
		{"v3", 100},
	}
	if len(entries) != len(wantOrder) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(wantOrder), entries)
	}
	for i, want := range wantOrder {
		if entries[i].VideoID != want.id {
			t.Errorf("position %d = %s, want %s", i, entries[i].VideoID, want.id)
		}
		if entries[i].TrendingScore != want.score {
			t.Errorf("%s score = %d, want %d", want.id, entries[i].TrendingScore, want.score)
		}
	}

	// Engagement aggregates surface on the entry.
	v1 := entries[1]
	if v1.LikeCount != 10 || v1.CommentCount != 5 || v1.ViewCount != 100 {
		t.Errorf("v1 aggregates = views %d likes %d comments %d, want 100/10/5",
			v1.ViewCount, v1.LikeCount, v1.CommentCount)
	}
	if v1.Creator.ID != "u1" || v1.Creator.Name != "Creator One" {
		t.Errorf("v1 creator = %+v", v1.Creator)
	}
}

// Equal scores fall back to recency: the newer video ranks first.
func TestFetchTrendingTieBreak(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	exec := func(query string, args ...interface{}) {
		t.Helper()
		if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	exec(`INSERT INTO users (id, name, image_url) VALUES (?, ?, ?)`, "u1", "Creator One", "")
	// Same view count, no engagement: identical trending scores.
	exec(`INSERT INTO videos (id, title, thumbnail_url, created_at, view_count, duration, visibility, user_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"older", "Older", "", now.Add(-3*time.Hour), 150, 120, "public", "u1", "")
	exec(`INSERT INTO videos (id, title, thumbnail_url, created_at, view_count, duration, visibility, user_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"newer", "Newer", "", now.Add(-time.Hour), 150, 120, "public", "u1", "")

	entries, _, err := db.FetchTrending(ctx, models.WindowDay, 10, nil)
	if err != nil {
		t.Fatalf("FetchTrending: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].TrendingScore != entries[1].TrendingScore {
		t.Fatalf("scores differ (%d vs %d), tie not exercised",
			entries[0].TrendingScore, entries[1].TrendingScore)
	}
	if entries[0].VideoID != "newer" || entries[1].VideoID != "older" {
		t.Errorf("order = [%s %s], want [newer older]", entries[0].VideoID, entries[1].VideoID)
	}
}

func TestFetchTrendingPagination(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	ctx := context.Background()

	first, hasMore, err := db.FetchTrending(ctx, models.WindowDay, 2, nil)
	if err != nil {
		t.Fatalf("FetchTrending: %v", err)
	}
	if !hasMore {
		t.Fatal("hasMore = false on truncated first page")
	}
	if len(first) != 2 || first[0].VideoID != "v2" || first[1].VideoID != "v1" {
		t.Fatalf("first page = %+v, want [v2 v1]", first)
	}

	cursor := first[len(first)-1].TrendingScore
	second, hasMore, err := db.FetchTrending(ctx, models.WindowDay, 2, &cursor)
	if err != nil {
		t.Fatalf("FetchTrending(cursor): %v", err)
	}
	if hasMore {
		t.Error("hasMore = true on final page")
	}
	if len(second) != 1 || second[0].VideoID != "v3" {
		t.Errorf("second page = %+v, want [v3]", second)
	}
}

func TestFetchTrendingWindowFilter(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	ctx := context.Background()

	day, _, err := db.FetchTrending(ctx, models.WindowDay, 10, nil)
	if err != nil {
		t.Fatalf("FetchTrending(day): %v", err)
	}
	for _, e := range day {
		if e.VideoID == "v5" {
			t.Error("40-day-old video surfaced in day window")
		}
	}

	all, _, err := db.FetchTrending(ctx, models.WindowAll, 10, nil)
	if err != nil {
		t.Fatalf("FetchTrending(all): %v", err)
	}
	found := false
	for _, e := range all {
		if e.VideoID == "v5" {
			found = true
		}
		if e.VideoID == "v4" {
			t.Error("private video surfaced in results")
		}
	}
	if !found {
		t.Error("old video missing from unbounded window")
	}
}

func TestFetchTrendingEmpty(t *testing.T) {
	db := newTestDB(t)

	entries, hasMore, err := db.FetchTrending(context.Background(), models.WindowDay, 10, nil)
	if err != nil {
		t.Fatalf("FetchTrending: %v", err)
	}
	if len(entries) != 0 || hasMore {
		t.Errorf("empty database returned %d entries, hasMore %v", len(entries), hasMore)
	}
}

func TestIncrementViewCount(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	ctx := context.Background()

	if err := db.IncrementViewCount(ctx, "v3"); err != nil {
		t.Fatalf("IncrementViewCount: %v", err)
	}

	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT view_count FROM videos WHERE id = ?`, "v3").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 101 {
		t.Errorf("view_count = %d, want 101", count)
	}

	// Unknown video is a silent no-op.
	if err := db.IncrementViewCount(ctx, "ghost"); err != nil {
		t.Errorf("IncrementViewCount(ghost) = %v, want nil", err)
	}
}

// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/trendora/trendora/internal/metrics"
	"github.com/trendora/trendora/internal/models"
)

// FetchTrending computes the ranked trending page for one window.
//
// The score (views + 5*likes + 10*comments) is computed inside the aggregate
// step so ranking and cursor filtering happen in the same pass. The query
// requests limit+1 rows to detect hasMore without a count query; the extra
// row is dropped before returning.
//
// The cursor filter is a strict less-than on the score combined with the
// same window and visibility predicates. Rows sharing the exact boundary
// score with the cursor can be skipped on the next page; accepted
// imprecision for a best-effort feed (a compound (score, id) cursor would
// close the gap but changes the pagination contract).
func (db *DB) FetchTrending(ctx context.Context, window models.Window, limit int, cursor *int64) ([]models.TrendingEntry, bool, error) {
	start := time.Now()
	entries, hasMore, err := db.fetchTrending(ctx, window, limit, cursor)
	metrics.RecordQuery(string(window), time.Since(start), err)
	return entries, hasMore, err
}

func (db *DB) fetchTrending(ctx context.Context, window models.Window, limit int, cursor *int64) ([]models.TrendingEntry, bool, error) {
	const scoreExpr = `(v.view_count
		+ COALESCE(COUNT(DISTINCT CASE WHEN vl.is_like THEN vl.user_id END), 0) * 5
		+ COALESCE(COUNT(DISTINCT c.id), 0) * 10)`

	args := []interface{}{}

	timeFilter := ""
	if interval := window.Interval(); interval > 0 {
		timeFilter = "AND v.created_at > ?"
		args = append(args, time.Now().UTC().Add(-interval))
	}

	cursorFilter := ""
	if cursor != nil {
		cursorFilter = fmt.Sprintf("HAVING %s < ?", scoreExpr)
		args = append(args, *cursor)
	}

	// limit+1 for hasMore detection
	args = append(args, limit+1)

	query := fmt.Sprintf(`
	WITH video_stats AS (
		SELECT
			v.id,
			v.title,
			v.thumbnail_url,
			v.created_at,
			v.view_count,
			v.duration,
			v.visibility,
			v.user_id,
			v.category_id,
			COALESCE(COUNT(DISTINCT c.id), 0) AS comment_count,
			COALESCE(COUNT(DISTINCT CASE WHEN vl.is_like THEN vl.user_id END), 0) AS like_count,
			%s AS trending_score
		FROM videos v
		LEFT JOIN comments c ON v.id = c.video_id
		LEFT JOIN video_likes vl ON v.id = vl.video_id
		WHERE v.visibility = 'public' %s
		GROUP BY v.id, v.title, v.thumbnail_url, v.created_at, v.view_count,
			v.duration, v.visibility, v.user_id, v.category_id
		%s
		ORDER BY trending_score DESC, v.created_at DESC
		LIMIT ?
	)
	SELECT
		vs.id, vs.title, vs.thumbnail_url, vs.created_at, vs.view_count,
		vs.duration, vs.visibility, vs.category_id,
		vs.comment_count, vs.like_count, vs.trending_score,
		u.id, u.name, u.image_url
	FROM video_stats vs
	JOIN users u ON vs.user_id = u.id
	ORDER BY vs.trending_score DESC, vs.created_at DESC`,
		scoreExpr, timeFilter, cursorFilter)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("query trending %s: %w", window, err)
	}
	defer rows.Close()

	var entries []models.TrendingEntry
	for rows.Next() {
		var e models.TrendingEntry
		if err := rows.Scan(
			&e.VideoID, &e.Title, &e.ThumbnailURL, &e.CreatedAt, &e.ViewCount,
			&e.Duration, &e.Visibility, &e.CategoryID,
			&e.CommentCount, &e.LikeCount, &e.TrendingScore,
			&e.Creator.ID, &e.Creator.Name, &e.Creator.ImageURL,
		); err != nil {
			return nil, false, fmt.Errorf("scan trending row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate trending rows: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}

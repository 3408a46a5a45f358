// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package models

import (
	"fmt"
	"time"
)

// Window is a rolling or unbounded time range used to scope the trending
// computation. Each window carries its own cache TTL and SQL time predicate.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// WindowAllRanges is not a query window; it addresses every window at once
// in invalidation requests ("clear the whole trending namespace").
const WindowAllRanges = "all-ranges"

// Windows lists the queryable windows in ascending TTL order.
func Windows() []Window {
	return []Window{WindowDay, WindowWeek, WindowMonth, WindowAll}
}

// ParseWindow validates a raw string against the closed window enumeration.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowDay, WindowWeek, WindowMonth, WindowAll:
		return Window(s), nil
	}
	return "", fmt.Errorf("invalid time range %q", s)
}

// TTL returns the cache lifetime for pages computed under this window.
//
// Shorter windows change composition faster and are cheaper to recompute, so
// they refresh more often; the "all" window is the most expensive query and
// the least volatile ranking, so it is cached longest.
func (w Window) TTL() time.Duration {
	switch w {
	case WindowDay:
		return 600 * time.Second
	case WindowWeek:
		return 1800 * time.Second
	case WindowMonth:
		return 3600 * time.Second
	default:
		return 10800 * time.Second
	}
}

// Interval returns the cutoff duration for the window's time predicate
// (created_at > now - interval). Zero means unbounded.
func (w Window) Interval() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Creator identifies the channel that published a video.
type Creator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// TrendingEntry is one ranked video in a trending page. The score is
// computed at query time (views + 5*likes + 10*comments) and never stored;
// an entry is an immutable snapshot once cached.
type TrendingEntry struct {
	VideoID       string    `json:"videoId"`
	Title         string    `json:"title"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	ViewCount     int64     `json:"viewCount"`
	Duration      int64     `json:"duration"`
	Visibility    string    `json:"visibility"`
	CategoryID    string    `json:"categoryId,omitempty"`
	CommentCount  int64     `json:"commentCount"`
	LikeCount     int64     `json:"likeCount"`
	TrendingScore int64     `json:"trendingScore"`
	Creator       Creator   `json:"creator"`
}

// TrendingPage is one page of ranked entries. NextCursor carries the score
// of the last entry when more rows exist; followers request strictly smaller
// scores (keyset pagination, stable under concurrent inserts).
type TrendingPage struct {
	Entries    []TrendingEntry `json:"entries"`
	NextCursor *int64          `json:"nextCursor,omitempty"`
}

// TrendingScore applies the ranking formula to raw aggregates.
// Kept in one place so the SQL expression and application-side checks agree.
func TrendingScore(views, likes, comments int64) int64 {
	return views + 5*likes + 10*comments
}

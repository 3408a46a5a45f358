// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package notify publishes real-time platform events to subscribed clients.
// Delivery is fire-and-forget, at most once: UI staleness self-heals on the
// next fetch, so nothing here retries.
package notify

import (
	"context"
)

// Channel is the pub/sub channel real-time clients subscribe to.
const Channel = "videos-channel"

// Event names published on Channel.
const (
	EventVideoDeleted = "video-deleted"
)

// Notification is the wire envelope for one real-time event.
type Notification struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes events to the real-time channel.
type Notifier interface {
	Publish(ctx context.Context, event string, payload interface{}) error
	Close() error
}

// Nop is a Notifier that drops everything. Used when real-time delivery is
// disabled by configuration, and in tests.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(ctx context.Context, event string, payload interface{}) error { return nil }

// Close is a no-op.
func (Nop) Close() error { return nil }

// Verify interface implementation at compile time
var _ Notifier = Nop{}

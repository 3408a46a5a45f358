// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package api exposes the HTTP surface: the trending read path, the
// invalidation webhooks, schedule administration, health and audit reads,
// and the websocket upgrade endpoint.
package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/trendora/trendora/internal/auth"
	"github.com/trendora/trendora/internal/config"
	"github.com/trendora/trendora/internal/notify"
	"github.com/trendora/trendora/internal/scheduler"
	"github.com/trendora/trendora/internal/trending"
	ws "github.com/trendora/trendora/internal/websocket"
)

// Version is the reported application version, overridable at build time
// via -ldflags "-X github.com/trendora/trendora/internal/api.Version=...".
var Version = "dev"

// Server holds the handler dependencies. Construct with NewServer, mount
// with Router.
type Server struct {
	cfg       *config.Config
	trending  *trending.Service
	views     *trending.ViewDedup
	authn     *auth.Authenticator
	schedules *scheduler.Manager
	notifier  notify.Notifier
	hub       *ws.Hub
	upgrader  gorillaws.Upgrader
	started   time.Time
}

// NewServer wires the HTTP surface. notifier and hub may be a notify.Nop and
// nil respectively when real-time delivery is disabled; the websocket
// endpoint then answers 503.
func NewServer(
	cfg *config.Config,
	trendingSvc *trending.Service,
	views *trending.ViewDedup,
	authn *auth.Authenticator,
	schedules *scheduler.Manager,
	notifier notify.Notifier,
	hub *ws.Hub,
) *Server {
	return &Server{
		cfg:       cfg,
		trending:  trendingSvc,
		views:     views,
		authn:     authn,
		schedules: schedules,
		notifier:  notifier,
		hub:       hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the platform frontend; CORS
			// policy is enforced at the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}
}

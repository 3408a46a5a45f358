// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package websocket fans real-time platform events out to connected
// clients. The hub receives notifications from the NATS subscriber and
// broadcasts them; slow clients are dropped rather than allowed to block
// the broadcast loop.
package websocket

import (
	"context"
	"sync"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
	"github.com/trendora/trendora/internal/notify"
)

// Hub maintains the set of active clients and broadcasts notifications.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan notify.Notification
	register   chan *Client
	unregister chan *Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan notify.Notification, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues a notification for every connected client. Drops the
// notification if the broadcast buffer is full; real-time delivery is at
// most once.
func (h *Hub) Broadcast(n notify.Notification) {
	select {
	case h.broadcast <- n:
	default:
		logging.Warn().Str("event", n.Event).Msg("Broadcast buffer full, dropping notification")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve runs the hub loop until ctx is canceled. Implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WebsocketClients.Inc()
			logging.Debug().Msg("Websocket client connected")

		case client := <-h.unregister:
			h.removeClient(client)

		case n := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				targets = append(targets, client)
			}
			h.mu.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- n:
				default:
					// Slow consumer: sever rather than stall.
					h.removeClient(client)
				}
			}

		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.WebsocketClients.Dec()
		logging.Debug().Msg("Websocket client disconnected")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
		metrics.WebsocketClients.Dec()
	}
}

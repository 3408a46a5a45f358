// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/trendora/trendora/internal/notify"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}

func TestHubBroadcastReachesClients(t *testing.T) {
	hub := startHub(t)

	c1 := NewClient(hub, nil)
	c2 := NewClient(hub, nil)
	hub.Register(c1)
	hub.Register(c2)
	waitForClients(t, hub, 2)

	hub.Broadcast(notify.Notification{Event: notify.EventVideoDeleted, Payload: "v1"})

	for _, c := range []*Client{c1, c2} {
		select {
		case n := <-c.send:
			if n.Event != notify.EventVideoDeleted {
				t.Errorf("event = %q, want %q", n.Event, notify.EventVideoDeleted)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	c := NewClient(hub, nil)
	hub.Register(c)
	waitForClients(t, hub, 1)

	hub.Unregister(c)
	waitForClients(t, hub, 0)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("send channel delivered a value after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}
}

// A client that stops draining its send channel is severed instead of
// blocking the broadcast loop.
func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)

	slow := NewClient(hub, nil)
	hub.Register(slow)
	waitForClients(t, hub, 1)

	// Overflow the client's send buffer without draining it.
	for i := 0; i < cap(slow.send)+2; i++ {
		hub.Broadcast(notify.Notification{Event: "e", Payload: i})
	}
	waitForClients(t, hub, 0)
}

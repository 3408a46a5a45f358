// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package websocket

import (
	"context"
	"fmt"
	"time"

	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	natsgo "github.com/nats-io/nats.go"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/notify"

	"github.com/goccy/go-json"
)

// Subscriber bridges the NATS notification channel into the hub, so events
// published by any server instance reach this instance's websocket clients.
type Subscriber struct {
	hub *Hub
	url string
}

// NewSubscriber creates a subscriber feeding hub from the NATS server at url.
func NewSubscriber(hub *Hub, url string) *Subscriber {
	return &Subscriber{hub: hub, url: url}
}

// Serve consumes the notification channel until ctx is canceled.
// Implements suture.Service; the supervisor restarts it on failure.
func (s *Subscriber) Serve(ctx context.Context) error {
	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL: s.url,
		NatsOptions: []natsgo.Option{
			natsgo.RetryOnFailedConnect(true),
			natsgo.MaxReconnects(-1),
			natsgo.ReconnectWait(2 * time.Second),
		},
		Unmarshaler: &wmnats.NATSMarshaler{},
		JetStream:   wmnats.JetStreamConfig{Disabled: true},
	}, notify.NewWatermillLogger())
	if err != nil {
		return fmt.Errorf("create notification subscriber: %w", err)
	}
	defer func() { _ = sub.Close() }()

	messages, err := sub.Subscribe(ctx, notify.Channel)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", notify.Channel, err)
	}

	logging.Info().Str("channel", notify.Channel).Msg("Notification subscriber started")
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("notification channel closed")
			}

			var n notify.Notification
			if err := json.Unmarshal(msg.Payload, &n); err != nil {
				logging.Err(err).Msg("Dropping malformed notification")
				msg.Ack()
				continue
			}
			s.hub.Broadcast(n)
			msg.Ack()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

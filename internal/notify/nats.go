// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
)

// NATSNotifier publishes notifications over NATS via Watermill. The
// websocket hub subscribes to the same subject, so every server instance
// fans events out to its own connected clients.
type NATSNotifier struct {
	publisher message.Publisher
	mu        sync.Mutex
	closed    bool
}

// NewNATSNotifier connects a Watermill NATS publisher to url.
func NewNATSNotifier(url string) (*NATSNotifier, error) {
	logger := NewWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmnats.NATSMarshaler{},
		JetStream:   wmnats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create notification publisher: %w", err)
	}

	return &NATSNotifier{publisher: pub}, nil
}

// Publish sends one event to the real-time channel. At most once; a publish
// failure is the caller's signal to log and move on, never to retry.
func (n *NATSNotifier) Publish(ctx context.Context, event string, payload interface{}) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return fmt.Errorf("notifier is closed")
	}
	n.mu.Unlock()

	data, err := json.Marshal(Notification{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", event, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set("event", event)

	if err := n.publisher.Publish(Channel, msg); err != nil {
		return fmt.Errorf("publish notification %s: %w", event, err)
	}

	metrics.RecordNotification(event)
	logging.Debug().Str("event", event).Msg("Real-time notification published")
	return nil
}

// Close shuts the publisher down.
func (n *NATSNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.publisher.Close()
}

// Verify interface implementation at compile time
var _ Notifier = (*NATSNotifier)(nil)

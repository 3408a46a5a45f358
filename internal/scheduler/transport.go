// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package scheduler manages the recurring invalidation triggers registered
// with the external scheduling service, and the one-off message publishes
// that ride the same transport.
package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/trendora/trendora/internal/logging"
)

// Schedule is one recurring HTTP-trigger definition held by the scheduling
// service: it POSTs Body to Destination on the Cron cadence with Headers
// attached. ScheduleID is caller-assigned, which is what makes setup
// idempotent.
type Schedule struct {
	ScheduleID  string            `json:"scheduleId"`
	Cron        string            `json:"cron"`
	Destination string            `json:"destination"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// Transport is the scheduling service client surface. The service is an
// external collaborator; this interface is what the manager and the event
// relay program against, and what tests fake.
type Transport interface {
	CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, scheduleID string) error

	// PublishJSON sends one JSON message to url via the scheduling
	// service's messaging endpoint and returns the message identifier.
	PublishJSON(ctx context.Context, url string, body interface{}, headers map[string]string) (string, error)
}

// HTTPTransport talks to a QStash-style scheduling API over HTTPS. All calls
// share a circuit breaker so a misbehaving scheduling service trips fast
// instead of stacking up blocked requests.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPTransport creates a transport rooted at baseURL, authenticating
// with the bearer token.
func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	settings := gobreaker.Settings{
		Name:    "scheduler-transport",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Scheduler transport circuit breaker state change")
		},
	}

	return &HTTPTransport{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// CreateSchedule registers (or replaces) a recurring trigger.
func (t *HTTPTransport) CreateSchedule(ctx context.Context, s Schedule) (Schedule, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return Schedule{}, fmt.Errorf("marshal schedule %s: %w", s.ScheduleID, err)
	}

	data, err := t.do(ctx, http.MethodPost, t.baseURL+"/v2/schedules", payload, nil)
	if err != nil {
		return Schedule{}, fmt.Errorf("create schedule %s: %w", s.ScheduleID, err)
	}

	var created Schedule
	if err := json.Unmarshal(data, &created); err != nil {
		return Schedule{}, fmt.Errorf("decode schedule %s: %w", s.ScheduleID, err)
	}
	return created, nil
}

// ListSchedules returns every registered trigger.
func (t *HTTPTransport) ListSchedules(ctx context.Context) ([]Schedule, error) {
	data, err := t.do(ctx, http.MethodGet, t.baseURL+"/v2/schedules", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	var schedules []Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, fmt.Errorf("decode schedule list: %w", err)
	}
	return schedules, nil
}

// DeleteSchedule removes a trigger by identifier.
func (t *HTTPTransport) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if _, err := t.do(ctx, http.MethodDelete, t.baseURL+"/v2/schedules/"+scheduleID, nil, nil); err != nil {
		return fmt.Errorf("delete schedule %s: %w", scheduleID, err)
	}
	return nil
}

// PublishJSON sends one message to url through the messaging endpoint.
func (t *HTTPTransport) PublishJSON(ctx context.Context, url string, body interface{}, headers map[string]string) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal publish body: %w", err)
	}

	fwd := map[string]string{}
	for k, v := range headers {
		// Headers destined for the receiving webhook are namespaced per
		// the messaging API's forwarding convention.
		fwd["Upstream-Forward-"+k] = v
	}

	data, err := t.do(ctx, http.MethodPost, t.baseURL+"/v2/publish/"+url, payload, fwd)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", url, err)
	}

	var resp struct {
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	return resp.MessageID, nil
}

// do executes one authenticated request through the circuit breaker and
// returns the response body.
func (t *HTTPTransport) do(ctx context.Context, method, url string, payload []byte, headers map[string]string) ([]byte, error) {
	return t.breaker.Execute(func() ([]byte, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+t.token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("scheduling service returned %d: %s", resp.StatusCode, data)
		}
		return data, nil
	})
}

// Verify interface implementation at compile time
var _ Transport = (*HTTPTransport)(nil)

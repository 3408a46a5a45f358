// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestHTTPTransportCreateSchedule(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/schedules" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var s Schedule
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(s)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, "token-1")
	created, err := transport.CreateSchedule(context.Background(), Schedule{
		ScheduleID: ScheduleIDDaily,
		Cron:       "5 0 * * *",
	})
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if created.ScheduleID != ScheduleIDDaily {
		t.Errorf("created schedule = %+v", created)
	}
	if gotAuth != "Bearer token-1" {
		t.Errorf("Authorization = %q, want Bearer token-1", gotAuth)
	}
}

func TestHTTPTransportListAndDelete(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v2/schedules":
			_ = json.NewEncoder(w).Encode([]Schedule{{ScheduleID: ScheduleIDWeekly}})
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/v2/schedules/"):
			deleted = strings.TrimPrefix(r.URL.Path, "/v2/schedules/")
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, "token")
	ctx := context.Background()

	schedules, err := transport.ListSchedules(ctx)
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(schedules) != 1 || schedules[0].ScheduleID != ScheduleIDWeekly {
		t.Errorf("schedules = %+v", schedules)
	}

	if err := transport.DeleteSchedule(ctx, ScheduleIDWeekly); err != nil {
		t.Fatalf("DeleteSchedule: %v", err)
	}
	if deleted != ScheduleIDWeekly {
		t.Errorf("deleted = %q, want %s", deleted, ScheduleIDWeekly)
	}
}

func TestHTTPTransportPublishForwardsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v2/publish/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Upstream-Forward-x-api-key"); got != "secret" {
			t.Errorf("forwarded header = %q, want secret", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"messageId": "msg-42"})
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, "token")
	msgID, err := transport.PublishJSON(context.Background(),
		"https://example.com/hook",
		map[string]string{"timeRange": "all-ranges"},
		map[string]string{"x-api-key": "secret"},
	)
	if err != nil {
		t.Fatalf("PublishJSON: %v", err)
	}
	if msgID != "msg-42" {
		t.Errorf("messageID = %q, want msg-42", msgID)
	}
}

func TestHTTPTransportErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, "token")
	if _, err := transport.ListSchedules(context.Background()); err == nil {
		t.Fatal("ListSchedules succeeded against 502 response")
	}
}

// Five consecutive failures trip the breaker; subsequent calls fail fast
// without reaching the service.
func TestHTTPTransportCircuitBreaker(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, "token")
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, _ = transport.ListSchedules(ctx)
	}
	if hits != 5 {
		t.Errorf("service hit %d times, want 5 (breaker open after fifth failure)", hits)
	}
}

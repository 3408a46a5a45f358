// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/trendora/trendora/internal/auth"
	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/models"
)

// scheduleIDPrefix is the naming convention shared by every invalidation
// trigger; CheckSchedules filters on it.
const scheduleIDPrefix = "trending-invalidation"

// Fixed schedule identifiers. Re-running setup overwrites these in place
// instead of accumulating duplicates.
const (
	ScheduleIDDaily     = scheduleIDPrefix + "-daily"
	ScheduleIDWeekly    = scheduleIDPrefix + "-weekly"
	ScheduleIDAllRanges = scheduleIDPrefix + "-all-ranges"
)

// Manager registers and inspects the recurring invalidation triggers.
// Faults from the scheduling service are reported as structured results,
// never propagated as errors: this is an operator surface and operators
// retry manually.
type Manager struct {
	transport  Transport
	webhookURL string
	apiKey     string
}

// NewManager creates a schedule manager targeting webhookURL (the
// invalidation webhook endpoint) and authenticating deliveries with apiKey.
func NewManager(transport Transport, webhookURL, apiKey string) *Manager {
	return &Manager{transport: transport, webhookURL: webhookURL, apiKey: apiKey}
}

// SetupResult reports the outcome of SetupSchedules.
type SetupResult struct {
	Success   bool       `json:"success"`
	Schedules []Schedule `json:"schedules,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// CheckResult reports the invalidation triggers currently registered.
type CheckResult struct {
	Success   bool       `json:"success"`
	Schedules []Schedule `json:"schedules,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// RemoveResult reports the outcome of RemoveSchedule.
type RemoveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// definitions returns the three recurring triggers:
//
//   - daily window, shortly after midnight, when the 24h cutoff has rolled
//   - weekly window, Monday after midnight
//   - all-ranges every six hours, the safety net for missed or failed
//     single-window runs
func (m *Manager) definitions() ([]Schedule, error) {
	type entry struct {
		id        string
		cron      string
		timeRange string
	}
	entries := []entry{
		{ScheduleIDDaily, "5 0 * * *", string(models.WindowDay)},
		{ScheduleIDWeekly, "10 0 * * 1", string(models.WindowWeek)},
		{ScheduleIDAllRanges, "0 */6 * * *", models.WindowAllRanges},
	}

	schedules := make([]Schedule, 0, len(entries))
	for _, e := range entries {
		body, err := json.Marshal(models.InvalidateRequest{TimeRange: e.timeRange})
		if err != nil {
			return nil, fmt.Errorf("marshal body for %s: %w", e.id, err)
		}
		schedules = append(schedules, Schedule{
			ScheduleID:  e.id,
			Cron:        e.cron,
			Destination: m.webhookURL,
			Body:        string(body),
			Headers: map[string]string{
				auth.APIKeyHeader: m.apiKey,
				"Content-Type":    "application/json",
			},
		})
	}
	return schedules, nil
}

// SetupSchedules idempotently registers the invalidation triggers.
func (m *Manager) SetupSchedules(ctx context.Context) SetupResult {
	defs, err := m.definitions()
	if err != nil {
		return SetupResult{Success: false, Error: err.Error()}
	}

	created := make([]Schedule, 0, len(defs))
	for _, def := range defs {
		s, err := m.transport.CreateSchedule(ctx, def)
		if err != nil {
			logging.Err(err).Str("schedule_id", def.ScheduleID).Msg("Failed to create invalidation schedule")
			return SetupResult{Success: false, Error: err.Error()}
		}
		created = append(created, s)
	}

	logging.Info().Int("count", len(created)).Msg("Invalidation schedules registered")
	return SetupResult{Success: true, Schedules: created}
}

// CheckSchedules lists registered triggers filtered to the invalidation
// naming convention. Diagnostic only.
func (m *Manager) CheckSchedules(ctx context.Context) CheckResult {
	all, err := m.transport.ListSchedules(ctx)
	if err != nil {
		logging.Err(err).Msg("Failed to list invalidation schedules")
		return CheckResult{Success: false, Error: err.Error()}
	}

	matched := make([]Schedule, 0, len(all))
	for _, s := range all {
		if strings.Contains(s.ScheduleID, scheduleIDPrefix) {
			matched = append(matched, s)
		}
	}
	return CheckResult{Success: true, Schedules: matched}
}

// RemoveSchedule deletes one trigger by identifier.
func (m *Manager) RemoveSchedule(ctx context.Context, scheduleID string) RemoveResult {
	if err := m.transport.DeleteSchedule(ctx, scheduleID); err != nil {
		logging.Err(err).Str("schedule_id", scheduleID).Msg("Failed to delete invalidation schedule")
		return RemoveResult{Success: false, Error: err.Error()}
	}
	return RemoveResult{
		Success: true,
		Message: fmt.Sprintf("Schedule %s deleted successfully", scheduleID),
	}
}

// RequestInvalidation publishes a one-off invalidation message addressed to
// the webhook, riding the scheduling service's messaging transport. Used by
// the event relay as the backup path behind its direct cache delete.
func (m *Manager) RequestInvalidation(ctx context.Context, timeRange, reason string) (string, error) {
	msgID, err := m.transport.PublishJSON(ctx, m.webhookURL,
		models.InvalidateRequest{TimeRange: timeRange, Reason: reason},
		map[string]string{auth.APIKeyHeader: m.apiKey},
	)
	if err != nil {
		return "", fmt.Errorf("request invalidation: %w", err)
	}
	logging.Info().Str("message_id", msgID).Str("time_range", timeRange).Msg("Backup invalidation requested")
	return msgID, nil
}

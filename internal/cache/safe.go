// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/metrics"
)

// SafeStore wraps a Store with fail-open semantics: no method returns an
// error. Transport faults degrade to "treat as miss" / "treat as no-op" so
// the cache can never take down the read path; callers fall back to the
// slower but authoritative live query.
//
// Values are JSON-encoded on write and decoded on read. A value that fails
// to decode is treated as corrupted: the key is deleted and the caller sees
// a plain miss, never a parse error.
type SafeStore struct {
	store Store
}

// NewSafeStore wraps store with fail-open behavior.
func NewSafeStore(store Store) *SafeStore {
	return &SafeStore{store: store}
}

// GetJSON reads key into dest. Returns false on absence, transport fault,
// or corruption; dest is left untouched in every false case.
func (s *SafeStore) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}
	if err != nil {
		logging.Err(err).Str("key", key).Msg("Cache get failed, treating as miss")
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupted entry: self-heal by deleting so the next write
		// starts clean, and report a miss.
		logging.Err(err).Str("key", key).Msg("Corrupted cache entry, deleting")
		metrics.RecordCacheCorruption()
		if _, delErr := s.store.Delete(ctx, key); delErr != nil {
			logging.Err(delErr).Str("key", key).Msg("Failed to delete corrupted cache entry")
		}
		return false
	}
	return true
}

// SetJSON encodes value and stores it under key. A zero ttl persists until
// explicit deletion (used only for registry and audit keys). Returns whether
// the write succeeded.
func (s *SafeStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Err(err).Str("key", key).Msg("Cache value not serializable")
		return false
	}
	if err := s.store.Set(ctx, key, data, ttl); err != nil {
		logging.Err(err).Str("key", key).Msg("Cache set failed")
		return false
	}
	return true
}

// Delete removes key, reporting whether it existed. Faults report false.
func (s *SafeStore) Delete(ctx context.Context, key string) bool {
	existed, err := s.store.Delete(ctx, key)
	if err != nil {
		logging.Err(err).Str("key", key).Msg("Cache delete failed, treating as no-op")
		return false
	}
	return existed
}

// DeleteByPrefix removes all keys under prefix and returns the count.
// Zero matches and transport faults both report 0.
func (s *SafeStore) DeleteByPrefix(ctx context.Context, prefix string) int {
	count, err := s.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		logging.Err(err).Str("prefix", prefix).Msg("Cache prefix delete failed, treating as no-op")
		return 0
	}
	return count
}

// Exists reports key presence. Faults report false.
func (s *SafeStore) Exists(ctx context.Context, key string) bool {
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		logging.Err(err).Str("key", key).Msg("Cache exists check failed")
		return false
	}
	return ok
}

// KeysByPrefix lists keys under prefix. Faults report an empty list.
func (s *SafeStore) KeysByPrefix(ctx context.Context, prefix string) []string {
	keys, err := s.store.KeysByPrefix(ctx, prefix)
	if err != nil {
		logging.Err(err).Str("prefix", prefix).Msg("Cache prefix scan failed")
		return nil
	}
	return keys
}

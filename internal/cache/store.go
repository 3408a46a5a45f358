// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package cache provides the key-value cache layer behind the trending feed:
// a raw transport interface, its BadgerDB implementation, a fail-open typed
// wrapper, and the invalidation-group registry.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Store.Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("cache: key not found")

// Store is the raw cache transport: string keys, opaque byte values,
// optional TTL, and prefix enumeration. Implementations return errors;
// fail-open behavior lives one layer up in SafeStore.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the entry persists
	// until explicitly deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteByPrefix removes every key with the given prefix and returns
	// the number of keys removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)

	// KeysByPrefix lists keys with the given prefix.
	KeysByPrefix(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases the underlying resources.
	Close() error
}

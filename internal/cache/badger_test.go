// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore("")
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStoreGetSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}

	if err := store.Set(ctx, "k1", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get(k1) = %q, want %q", got, "v1")
	}
}

func TestBadgerStoreTTLExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "ephemeral", []byte("x"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := store.Get(ctx, "ephemeral"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if _, err := store.Get(ctx, "ephemeral"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after expiry error = %v, want ErrKeyNotFound", err)
	}
}

func TestBadgerStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	existed, err := store.Delete(ctx, "nothing")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if existed {
		t.Error("Delete(nothing) reported existed = true")
	}

	_ = store.Set(ctx, "k", []byte("v"), 0)
	existed, err = store.Delete(ctx, "k")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("Delete(k) reported existed = false")
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestBadgerStorePrefixOperations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := map[string]string{
		"trending:day:10:0":   "a",
		"trending:day:20:0":   "b",
		"trending:week:10:0":  "c",
		"meta:trending-keys":  "d",
		"views:dedup:v1:user": "e",
	}
	for k, v := range seed {
		if err := store.Set(ctx, k, []byte(v), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	keys, err := store.KeysByPrefix(ctx, "trending:day:")
	if err != nil {
		t.Fatalf("KeysByPrefix: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("KeysByPrefix(trending:day:) = %d keys, want 2", len(keys))
	}

	count, err := store.DeleteByPrefix(ctx, "trending:")
	if err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if count != 3 {
		t.Errorf("DeleteByPrefix(trending:) = %d, want 3", count)
	}

	// Unrelated namespaces survive.
	for _, k := range []string{"meta:trending-keys", "views:dedup:v1:user"} {
		if ok, _ := store.Exists(ctx, k); !ok {
			t.Errorf("key %s was deleted by unrelated prefix", k)
		}
	}
}

func TestBadgerStoreExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if ok, err := store.Exists(ctx, "nope"); err != nil || ok {
		t.Errorf("Exists(nope) = (%v, %v), want (false, nil)", ok, err)
	}
	_ = store.Set(ctx, "yes", []byte("1"), 0)
	if ok, err := store.Exists(ctx, "yes"); err != nil || !ok {
		t.Errorf("Exists(yes) = (%v, %v), want (true, nil)", ok, err)
	}
}

// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package database holds the DuckDB-backed data store the trending ranking
// reads from. The platform's write paths (uploads, likes, comments) live in
// other services; this package owns the schema needed for the aggregate
// trending query plus small helpers used by tests and seeding.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/trendora/trendora/internal/logging"
)

// DB wraps the SQL connection to the video data store.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for an ephemeral database in tests.
func New(path string) (*DB, error) {
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", path, err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn}
	if err := db.initSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logging.Info().Str("path", path).Msg("Database opened")
	return db, nil
}

// initSchema creates the tables the trending query reads. IF NOT EXISTS
// keeps startup idempotent across restarts.
func (db *DB) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			image_url VARCHAR DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			thumbnail_url VARCHAR DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			view_count BIGINT DEFAULT 0,
			duration BIGINT DEFAULT 0,
			visibility VARCHAR DEFAULT 'private',
			user_id VARCHAR NOT NULL,
			category_id VARCHAR DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id VARCHAR PRIMARY KEY,
			video_id VARCHAR NOT NULL,
			user_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS video_likes (
			video_id VARCHAR NOT NULL,
			user_id VARCHAR NOT NULL,
			is_like BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// IncrementViewCount bumps a video's view counter. Returns sql.ErrNoRows
// semantics silently; a missing video is a no-op.
func (db *DB) IncrementViewCount(ctx context.Context, videoID string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE videos SET view_count = view_count + 1 WHERE id = ?`, videoID)
	if err != nil {
		return fmt.Errorf("increment view count for %s: %w", videoID, err)
	}
	return nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Command server runs the Trendora HTTP server: the trending read path,
// the cache invalidation webhooks, schedule administration, and real-time
// event fan-out.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/trendora/trendora/internal/api"
	"github.com/trendora/trendora/internal/auth"
	"github.com/trendora/trendora/internal/cache"
	"github.com/trendora/trendora/internal/config"
	"github.com/trendora/trendora/internal/database"
	"github.com/trendora/trendora/internal/logging"
	"github.com/trendora/trendora/internal/notify"
	"github.com/trendora/trendora/internal/scheduler"
	"github.com/trendora/trendora/internal/trending"
	ws "github.com/trendora/trendora/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("version", api.Version).Msg("Starting Trendora")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	badgerStore, err := cache.NewBadgerStore(cfg.Cache.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open cache store")
	}
	defer func() { _ = badgerStore.Close() }()
	store := cache.NewSafeStore(badgerStore)

	trendingSvc := trending.NewService(db, store)
	views := trending.NewViewDedup(store, db)

	var verifier *auth.SignatureVerifier
	if cfg.Auth.SigningKeyCurrent != "" {
		verifier = auth.NewSignatureVerifier(cfg.Auth.SigningKeyCurrent, cfg.Auth.SigningKeyNext)
	}
	authn := auth.NewAuthenticator(cfg.Auth.InternalAPIKey, verifier)

	transport := scheduler.NewHTTPTransport(cfg.Scheduler.BaseURL, cfg.Scheduler.Token)
	schedules := scheduler.NewManager(transport, cfg.Scheduler.WebhookURL, cfg.Auth.InternalAPIKey)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := suture.New("trendora", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Str("event", e.String()).Msg("Supervisor event")
		},
	})

	// Real-time layer: NATS notifier plus the websocket hub and its
	// subscriber. Disabled entirely when nats.enabled is false.
	var notifier notify.Notifier = notify.Nop{}
	var hub *ws.Hub
	if cfg.NATS.Enabled {
		natsURL := cfg.NATS.URL
		if cfg.NATS.Embedded {
			embedded, err := notify.NewEmbeddedServer("127.0.0.1", 0)
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
			}
			natsURL = embedded.ClientURL()
			defer func() { _ = embedded.Shutdown(context.Background()) }()
			logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
		}

		natsNotifier, err := notify.NewNATSNotifier(natsURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect notification publisher")
		}
		defer func() { _ = natsNotifier.Close() }()
		notifier = natsNotifier

		hub = ws.NewHub()
		supervisor.Add(hub)
		supervisor.Add(ws.NewSubscriber(hub, natsURL))
	}

	server := api.NewServer(cfg, trendingSvc, views, authn, schedules, notifier, hub)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	supervisor.Add(&httpService{server: httpServer, cfg: cfg})

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Server listening")
	if err := supervisor.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor exited")
		os.Exit(1)
	}
	logging.Info().Msg("Shutdown complete")
}

// httpService adapts http.Server to suture.Service with graceful shutdown.
type httpService struct {
	server *http.Server
	cfg    *config.Config
}

// Serve runs the listener until ctx is canceled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *httpService) String() string {
	return "http-server"
}

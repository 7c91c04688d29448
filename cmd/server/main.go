// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

// Command server runs the ArtScape recommendation service.
//
// Startup is two-phase: the HTTP server starts accepting connections
// immediately, but recommendation and embedding routes return 503 until
// the store has been verified and readiness is flipped. Health probes
// are served throughout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hadeelfai/ArtScape/internal/api"
	"github.com/hadeelfai/ArtScape/internal/config"
	"github.com/hadeelfai/ArtScape/internal/embed"
	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/metrics"
	"github.com/hadeelfai/ArtScape/internal/recommend"
	"github.com/hadeelfai/ArtScape/internal/store"
	"github.com/hadeelfai/ArtScape/internal/supervisor"
	"github.com/hadeelfai/ArtScape/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Service exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Int("dimension", cfg.Embedding.Dimension).
		Bool("batch_enabled", cfg.Recommend.BatchEnabled).
		Msg("Configuration loaded")

	st, err := store.OpenBadger(store.BadgerOptions{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		return fmt.Errorf("opening artwork store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close artwork store")
		}
	}()

	// Generator chain: HTTP client -> circuit breaker -> LRU cache.
	// Callers see cache hits first; misses pass through the breaker.
	var gen embed.Generator = embed.NewClient(cfg.Embedding)
	gen = embed.NewBreakerGenerator(gen)
	gen = embed.NewCachingGenerator(gen, cfg.Embedding.CacheSize, cfg.Embedding.CacheTTL)

	svc := recommend.NewService(st, gen, cfg)
	batch := recommend.NewBatchProcessor(st, gen, cfg.Recommend.BatchLimit)

	readiness := &api.Readiness{}
	handler := api.NewHandler(svc, batch, st, readiness, cfg.Recommend.MaxTopK)
	mw := api.NewMiddleware(api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	})
	router := api.NewRouter(handler, mw, readiness)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if cfg.Recommend.BatchEnabled {
		tree.AddWorkerService(services.NewBatchScheduler(batch, cfg.Recommend.BatchInterval))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", server.Addr).Msg("HTTP server starting")

	go warmUp(ctx, st, readiness)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervisor tree failed: %w", err)
		}
	}

	// Wait for the error channel to close (supervisor finished).
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, us := range unstopped {
			logging.Warn().Str("service", us.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}

// warmUp verifies the store and flips readiness, opening the
// recommendation and embedding routes to traffic.
func warmUp(ctx context.Context, st store.Store, rd *api.Readiness) {
	if err := st.Ping(ctx); err != nil {
		logging.Error().Err(err).Msg("Store verification failed, service stays not ready")
		return
	}

	total, embedded, err := st.Counts(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Counting artworks failed, service stays not ready")
		return
	}
	metrics.SetArtworkCounts(total, embedded)

	rd.SetReady()
	logging.Info().
		Int("total_artworks", total).
		Int("embedded_artworks", embedded).
		Msg("Service ready")
}

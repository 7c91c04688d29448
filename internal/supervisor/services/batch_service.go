// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package services

import (
	"context"
	"time"

	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/recommend"
)

// BatchScheduler periodically sweeps the catalog for artworks without
// embeddings. Each tick runs one bounded batch; a tick that finds
// nothing to do is free. The first sweep runs shortly after startup so
// a fresh deployment does not wait a full interval.
type BatchScheduler struct {
	processor *recommend.BatchProcessor
	interval  time.Duration
	name      string
}

// startupDelay is how long the scheduler waits before its first sweep,
// giving the embedding sidecar time to come up.
const startupDelay = 10 * time.Second

// NewBatchScheduler creates a supervised periodic batch runner.
func NewBatchScheduler(processor *recommend.BatchProcessor, interval time.Duration) *BatchScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &BatchScheduler{
		processor: processor,
		interval:  interval,
		name:      "batch-scheduler",
	}
}

// Serve implements suture.Service.
func (s *BatchScheduler) Serve(ctx context.Context) error {
	logger := logging.With().Str("component", s.name).Logger()
	logger.Info().Dur("interval", s.interval).Msg("Batch embedding scheduler started")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(startupDelay):
	}
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *BatchScheduler) sweep(ctx context.Context) {
	result, err := s.processor.Run(ctx, recommend.BatchParams{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Error().Err(err).Msg("Scheduled batch embedding run failed")
		return
	}
	if result.Total > 0 {
		logging.Info().
			Int("processed", result.Processed).
			Int("failed", result.Failed).
			Msg("Scheduled batch embedding run finished")
	}
}

// String implements fmt.Stringer for supervision log messages.
func (s *BatchScheduler) String() string {
	return s.name
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hadeelfai/ArtScape/internal/embed"
	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/metrics"
	"github.com/hadeelfai/ArtScape/internal/store"
)

// BatchProcessor sweeps the catalog and fills in missing embeddings.
// It runs off the request path; recommendation queries never trigger
// inference.
type BatchProcessor struct {
	store  store.Store
	gen    embed.Generator
	limit  int
	logger zerolog.Logger
}

// NewBatchProcessor creates a BatchProcessor. limit caps how many
// artworks a single run touches.
func NewBatchProcessor(s store.Store, gen embed.Generator, limit int) *BatchProcessor {
	return &BatchProcessor{
		store:  s,
		gen:    gen,
		limit:  limit,
		logger: logging.With().Str("component", "batch").Logger(),
	}
}

// BatchParams control one batch run. A zero Limit uses the configured
// cap; Force regenerates embeddings that already exist.
type BatchParams struct {
	Limit int
	Force bool
}

// Run processes up to Limit artworks, embedding each independently. A
// failed item is counted and logged, never fatal to the run. Context
// cancellation stops the sweep between items and returns the partial
// counts alongside the context error, so a shutdown mid-run still
// reports what it finished.
func (p *BatchProcessor) Run(ctx context.Context, params BatchParams) (*BatchResult, error) {
	limit := params.Limit
	if limit <= 0 || limit > p.limit {
		limit = p.limit
	}

	artworks, err := p.store.ArtworksForEmbedding(ctx, limit, params.Force)
	if err != nil {
		return nil, fmt.Errorf("selecting artworks for embedding: %w", err)
	}

	result := &BatchResult{Total: len(artworks)}
	if result.Total == 0 {
		result.Message = "No artworks need embeddings."
		return result, nil
	}

	start := time.Now()
	for i := range artworks {
		if err := ctx.Err(); err != nil {
			p.logger.Warn().
				Int("processed", result.Processed).
				Int("failed", result.Failed).
				Int("total", result.Total).
				Msg("Batch embedding interrupted")
			return result, err
		}
		art := &artworks[i]
		if err := p.embedOne(ctx, art); err != nil {
			result.Failed++
			metrics.BatchItemsFailed.Inc()
			p.logger.Warn().
				Err(err).
				Str("artwork_id", art.ID).
				Msg("Batch embedding failed for artwork")
			continue
		}
		result.Processed++
		metrics.BatchItemsProcessed.Inc()
	}

	metrics.BatchLastSuccess.SetToCurrentTime()
	p.logger.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Int("total", result.Total).
		Dur("elapsed", time.Since(start)).
		Msg("Batch embedding complete")
	return result, nil
}

func (p *BatchProcessor) embedOne(ctx context.Context, art *store.Artwork) error {
	if art.Image == "" {
		return ErrNoImage
	}
	vec, err := p.gen.EmbedImage(ctx, art.Image)
	if err != nil {
		return err
	}
	return p.store.SetEmbedding(ctx, art.ID, vec)
}

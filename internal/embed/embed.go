// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

// Package embed provides access to the external CLIP embedding service.
//
// The Generator interface is the narrow contract the recommendation core
// depends on. The concrete stack is a plain HTTP client wrapped by a
// circuit breaker (the CLIP sidecar is remote and can be slow or down) and
// an LRU cache so that repeated embeds of the same content are idempotent
// and cheap:
//
//	client := embed.NewClient(cfg)
//	gen := embed.NewCachingGenerator(embed.NewBreakerGenerator(client), cfg.CacheSize, cfg.CacheTTL)
package embed

import (
	"context"
	"errors"
)

// ErrGenerationFailed indicates the embedding service could not produce a
// vector. This is a transient collaborator failure: the caller may retry.
var ErrGenerationFailed = errors.New("embedding generation failed")

// Generator produces unit vectors of the configured dimension from raw
// content. Implementations must be safe for concurrent use.
type Generator interface {
	// EmbedImage returns the embedding for the image at the given URL.
	EmbedImage(ctx context.Context, imageURL string) ([]float64, error)

	// EmbedText returns the embedding for a free-text query.
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

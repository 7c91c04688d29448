// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hadeelfai/ArtScape/internal/config"
	"github.com/hadeelfai/ArtScape/internal/embed"
	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/metrics"
	"github.com/hadeelfai/ArtScape/internal/store"
)

// Service is the recommendation core. It wires the store, the embedding
// generator, the ranker, and the profile builder behind the three query
// modes. Safe for concurrent use.
type Service struct {
	store    store.Store
	gen      embed.Generator
	ranker   *Ranker
	profiles *ProfileBuilder
	logger   zerolog.Logger
}

// NewService creates the recommendation service.
func NewService(s store.Store, gen embed.Generator, cfg *config.Config) *Service {
	return &Service{
		store:    s,
		gen:      gen,
		ranker:   NewRanker(cfg.Recommend.DefaultTopK),
		profiles: NewProfileBuilder(s),
		logger:   logging.With().Str("component", "recommend").Logger(),
	}
}

// SimilarParams are the inputs to an item-to-item query.
type SimilarParams struct {
	ArtworkID     string
	TopK          int
	ExcludeArtist bool
}

// SimilarByItem ranks the catalog against one artwork's embedding. The
// source artwork itself is always excluded from the results; its
// artist's other works are excluded when ExcludeArtist is set.
func (s *Service) SimilarByItem(ctx context.Context, p SimilarParams) (*SimilarResponse, error) {
	art, err := s.store.GetArtwork(ctx, p.ArtworkID)
	if err != nil {
		return nil, err
	}
	if !art.HasEmbedding() {
		return nil, fmt.Errorf("artwork %q: %w", p.ArtworkID, ErrMissingEmbedding)
	}

	var filter *store.Filter
	if p.ExcludeArtist && art.Artist != "" {
		filter = &store.Filter{ExcludeArtist: art.Artist}
	}
	excluding := map[string]struct{}{art.ID: {}}

	candidates, err := s.store.AllWithEmbedding(ctx, excluding, filter)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	ranked, total, err := s.ranker.Rank(ctx, art.Embedding, candidates, p.TopK)
	if err != nil {
		return nil, err
	}

	metrics.RecommendationsServed.WithLabelValues("similar").Inc()
	return &SimilarResponse{
		SourceArtworkID: art.ID,
		Recommendations: ranked,
		TotalCompared:   total,
	}, nil
}

// TextParams are the inputs to a text-to-item query.
type TextParams struct {
	Query string
	TopK  int
}

// SimilarByText embeds a free-text query and ranks the catalog against
// it. The query embedding lives in the same space as image embeddings,
// so no per-item inference happens on the request path.
func (s *Service) SimilarByText(ctx context.Context, p TextParams) (*TextResponse, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	qvec, err := s.gen.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.AllWithEmbedding(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	ranked, total, err := s.ranker.Rank(ctx, qvec, candidates, p.TopK)
	if err != nil {
		return nil, err
	}

	metrics.RecommendationsServed.WithLabelValues("text").Inc()
	return &TextResponse{
		Query:           query,
		Recommendations: ranked,
		TotalCompared:   total,
	}, nil
}

// PersonalizedParams are the inputs to a personalized query.
type PersonalizedParams struct {
	UserID string
	TopK   int
}

// Personalized builds the user's taste profile and ranks the catalog
// against it, excluding everything the user already interacted with. A
// user with no usable history gets an empty result with an explanatory
// message, not an error: the user exists, there is just nothing to
// build on.
func (s *Service) Personalized(ctx context.Context, p PersonalizedParams) (*PersonalizedResponse, error) {
	user, err := s.store.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	ids := user.InteractionIDs()
	profile, err := s.profiles.Build(ctx, ids)
	if err != nil {
		return nil, err
	}
	if !profile.OK() {
		s.logger.Debug().
			Str("user_id", p.UserID).
			Str("reason", string(profile.Reason)).
			Msg("No taste profile for user")
		return &PersonalizedResponse{
			UserID:          p.UserID,
			Recommendations: []RankedResult{},
			Message:         profile.Reason.Message(),
		}, nil
	}

	// Exclude every interacted artwork, embedded or not. Recommending
	// something the user already owns is worse than a smaller pool.
	excluding := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		excluding[id] = struct{}{}
	}

	candidates, err := s.store.AllWithEmbedding(ctx, excluding, nil)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	ranked, total, err := s.ranker.Rank(ctx, profile.Vector, candidates, p.TopK)
	if err != nil {
		return nil, err
	}

	resp := &PersonalizedResponse{
		UserID:          p.UserID,
		Recommendations: ranked,
		TotalCompared:   total,
		BasedOnItems:    profile.BasedOn,
	}
	if total == 0 {
		resp.Message = "No new artworks to recommend."
	}

	metrics.RecommendationsServed.WithLabelValues("personalized").Inc()
	return resp, nil
}

// GenerateEmbedding runs on-demand embedding for one artwork and stores
// the resulting vector.
func (s *Service) GenerateEmbedding(ctx context.Context, artworkID string) (*EmbedResponse, error) {
	art, err := s.store.GetArtwork(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	if art.Image == "" {
		return nil, fmt.Errorf("artwork %q: %w", artworkID, ErrNoImage)
	}

	vec, err := s.gen.EmbedImage(ctx, art.Image)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetEmbedding(ctx, art.ID, vec); err != nil {
		return nil, fmt.Errorf("storing embedding: %w", err)
	}

	s.logger.Info().
		Str("artwork_id", art.ID).
		Int("dimension", len(vec)).
		Msg("Generated embedding")
	return &EmbedResponse{ArtworkID: art.ID, Dimension: len(vec)}, nil
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

import (
	"context"
	"fmt"

	"github.com/hadeelfai/ArtScape/internal/store"
	"github.com/hadeelfai/ArtScape/internal/vector"
)

// NoProfileReason says why a taste profile could not be built. The two
// cases get different user-facing messages, so they stay distinct.
type NoProfileReason string

const (
	// NoProfileNoHistory means the user has no interactions at all.
	NoProfileNoHistory NoProfileReason = "no_history"
	// NoProfileNoEmbeddings means the user has interactions but none of
	// the referenced artworks has an embedding.
	NoProfileNoEmbeddings NoProfileReason = "no_embedded_history"
)

// Message returns the user-facing explanation for the reason.
func (r NoProfileReason) Message() string {
	switch r {
	case NoProfileNoHistory:
		return "No user history available. Like, save, or purchase artworks to get personalized recommendations."
	case NoProfileNoEmbeddings:
		return "No embeddings found for user history."
	default:
		return ""
	}
}

// Profile is a user taste vector: the element-wise mean of the
// embeddings of the artworks the user interacted with. BasedOn is the
// number of distinct embedded artworks that contributed. A zero-valued
// BasedOn means no profile; Reason says why.
type Profile struct {
	Vector  []float64
	BasedOn int
	Reason  NoProfileReason
}

// OK reports whether a usable profile vector was built.
func (p *Profile) OK() bool {
	return p.BasedOn > 0
}

// ProfileBuilder turns a user's interaction history into a Profile.
type ProfileBuilder struct {
	store store.Store
}

// NewProfileBuilder creates a ProfileBuilder backed by s.
func NewProfileBuilder(s store.Store) *ProfileBuilder {
	return &ProfileBuilder{store: s}
}

// Build computes the taste profile for the given interaction IDs. IDs
// that do not resolve to an embedded artwork are silently dropped, so a
// profile built from one embedded item out of fifty is still a valid
// profile with BasedOn == 1. Build never fails on empty input; it
// returns a Profile carrying the reason instead.
func (b *ProfileBuilder) Build(ctx context.Context, ids []string) (*Profile, error) {
	if len(ids) == 0 {
		return &Profile{Reason: NoProfileNoHistory}, nil
	}

	artworks, err := b.store.GetArtworks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading history artworks: %w", err)
	}

	vecs := make([][]float64, 0, len(artworks))
	for i := range artworks {
		if artworks[i].HasEmbedding() {
			vecs = append(vecs, artworks[i].Embedding)
		}
	}
	if len(vecs) == 0 {
		return &Profile{Reason: NoProfileNoEmbeddings}, nil
	}

	mean, err := vector.Mean(vecs)
	if err != nil {
		return nil, fmt.Errorf("computing profile vector: %w", err)
	}
	return &Profile{Vector: mean, BasedOn: len(vecs)}, nil
}

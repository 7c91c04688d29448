// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package store

import "time"

// Artwork is a catalog item. The embedding is attached by the embedding
// workflow after ingestion; a nil Embedding means "not yet embedded".
type Artwork struct {
	// ID is the opaque unique artwork identifier.
	ID string `json:"id"`

	// Embedding is the L2-normalized CLIP vector for the artwork image.
	// Nil until the embedding workflow has processed the artwork.
	Embedding []float64 `json:"embedding,omitempty"`

	// Title is the display title.
	Title string `json:"title"`

	// Artist is the opaque creator identifier.
	Artist string `json:"artist"`

	// Image is the artwork image URL used for embedding generation.
	Image string `json:"image"`

	// Price is the listed price. Passthrough display metadata.
	Price float64 `json:"price"`

	// Tags is free-form display metadata, not interpreted by the core.
	Tags []string `json:"tags,omitempty"`

	// CreatedAt is when the artwork was ingested.
	CreatedAt time.Time `json:"created_at"`

	// EmbeddingUpdatedAt records the last embedding generation time.
	EmbeddingUpdatedAt *time.Time `json:"embedding_updated_at,omitempty"`
}

// HasEmbedding reports whether the artwork has an embedding attached.
func (a *Artwork) HasEmbedding() bool {
	return len(a.Embedding) > 0
}

// View records a single artwork view with its timestamp.
// Only the artwork id is used for profile construction.
type View struct {
	Artwork  string    `json:"artwork"`
	ViewedAt time.Time `json:"viewed_at"`
}

// User carries the five interaction collections used to build a
// personalization profile.
type User struct {
	ID string `json:"id"`

	LikedArtworks     []string `json:"liked_artworks,omitempty"`
	SavedArtworks     []string `json:"saved_artworks,omitempty"`
	PurchasedArtworks []string `json:"purchased_artworks,omitempty"`
	CartAdditions     []string `json:"cart_additions,omitempty"`
	ViewedArtworks    []View   `json:"viewed_artworks,omitempty"`
}

// InteractionIDs returns the deduplicated union of artwork ids across all
// interaction kinds. Duplicates across kinds collapse to a single entry;
// first-seen order is preserved so downstream behavior is deterministic.
func (u *User) InteractionIDs() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range u.LikedArtworks {
		add(id)
	}
	for _, id := range u.SavedArtworks {
		add(id)
	}
	for _, id := range u.PurchasedArtworks {
		add(id)
	}
	for _, id := range u.CartAdditions {
		add(id)
	}
	for _, v := range u.ViewedArtworks {
		add(v.Artwork)
	}

	return ids
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

// Package store provides persistent access to artworks, their embeddings,
// and user interaction records.
//
// The Store interface is the abstraction boundary between the recommendation
// core and the persistence layer: the current implementation performs linear
// scans over a BadgerDB keyspace, but the contract is expressed as scan
// semantics so an indexed implementation can be swapped in later without
// changing the ranking engine.
package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrArtworkNotFound indicates the referenced artwork does not exist.
	ErrArtworkNotFound = errors.New("artwork not found")

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Filter applies one structural predicate to an embedded-artwork scan.
// A nil *Filter means no filtering.
type Filter struct {
	// ExcludeArtist drops artworks whose Artist equals this id.
	// Empty means no artist exclusion.
	ExcludeArtist string
}

// Match reports whether the artwork passes the filter.
func (f *Filter) Match(a *Artwork) bool {
	if f == nil {
		return true
	}
	if f.ExcludeArtist != "" && a.Artist == f.ExcludeArtist {
		return false
	}
	return true
}

// Store is the read/write contract the recommendation core depends on.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetArtwork returns the artwork by id, or ErrArtworkNotFound.
	GetArtwork(ctx context.Context, id string) (*Artwork, error)

	// GetArtworks returns the subset of the given ids that exist and have
	// an embedding. Missing ids and unembedded artworks are silently
	// omitted so partial data never aborts a request.
	GetArtworks(ctx context.Context, ids []string) ([]Artwork, error)

	// AllWithEmbedding returns every artwork that has an embedding,
	// excluding the named ids and applying the optional filter.
	// This is a full scan of the catalog: cost is O(total artworks).
	AllWithEmbedding(ctx context.Context, excluding map[string]struct{}, filter *Filter) ([]Artwork, error)

	// GetUser returns the user by id, or ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*User, error)

	// PutArtwork creates or replaces an artwork record.
	PutArtwork(ctx context.Context, a *Artwork) error

	// PutUser creates or replaces a user record.
	PutUser(ctx context.Context, u *User) error

	// SetEmbedding attaches an embedding to an existing artwork,
	// overwriting any previous vector. Returns ErrArtworkNotFound if the
	// artwork does not exist.
	SetEmbedding(ctx context.Context, id string, embedding []float64) error

	// ArtworksForEmbedding returns up to limit artworks that need an
	// embedding generated. With force set, already-embedded artworks are
	// included for regeneration. A limit <= 0 means no limit.
	ArtworksForEmbedding(ctx context.Context, limit int, force bool) ([]Artwork, error)

	// Counts returns the total artwork count and how many have embeddings.
	Counts(ctx context.Context) (total, embedded int, err error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

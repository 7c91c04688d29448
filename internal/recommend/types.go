// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

// RankedResult is one recommended artwork with its similarity to the query
// vector. Similarity is the raw cosine score, not rounded or rescaled.
type RankedResult struct {
	ArtworkID  string   `json:"artwork_id"`
	Similarity float64  `json:"similarity"`
	Title      string   `json:"title,omitempty"`
	Artist     string   `json:"artist,omitempty"`
	Image      string   `json:"image,omitempty"`
	Price      float64  `json:"price,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// SimilarResponse is the result of an item-to-item similarity query.
type SimilarResponse struct {
	SourceArtworkID string         `json:"source_artwork_id"`
	Recommendations []RankedResult `json:"recommendations"`
	TotalCompared   int            `json:"total_compared"`
}

// TextResponse is the result of a text-to-item query.
type TextResponse struct {
	Query           string         `json:"query"`
	Recommendations []RankedResult `json:"recommendations"`
	TotalCompared   int            `json:"total_compared"`
}

// PersonalizedResponse is the result of a personalized query. BasedOnItems
// counts the distinct embedded artworks that contributed to the profile
// vector; zero means no profile could be built and Message explains why.
type PersonalizedResponse struct {
	UserID          string         `json:"user_id"`
	Recommendations []RankedResult `json:"recommendations"`
	TotalCompared   int            `json:"total_compared"`
	BasedOnItems    int            `json:"based_on_items"`
	Message         string         `json:"message,omitempty"`
}

// EmbedResponse reports a single on-demand embedding generation.
type EmbedResponse struct {
	ArtworkID string `json:"artwork_id"`
	Dimension int    `json:"dimension"`
}

// BatchResult reports an aggregate batch embedding run. Failed items are
// counted, not fatal: one bad image never aborts the sweep.
type BatchResult struct {
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
}

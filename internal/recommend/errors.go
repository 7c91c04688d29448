// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

import "errors"

var (
	// ErrMissingEmbedding indicates the source artwork exists but has no
	// embedding yet, so it cannot anchor a similarity query.
	ErrMissingEmbedding = errors.New("artwork has no embedding")

	// ErrNoImage indicates an artwork has no image URL to embed.
	ErrNoImage = errors.New("artwork has no image url")

	// ErrEmptyQuery indicates a text query was empty after trimming.
	ErrEmptyQuery = errors.New("query text is empty")
)

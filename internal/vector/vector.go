// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

// Package vector provides the numeric primitives used by the recommendation
// engine: dot-product similarity and element-wise mean over embedding vectors.
//
// All embeddings handled by this package are expected to be L2-normalized
// upstream (the CLIP service normalizes before returning), so the dot product
// of two vectors equals their cosine similarity. No normalization is performed
// here.
package vector

import (
	"errors"
	"fmt"
)

// Sentinel errors for invariant violations.
var (
	// ErrDimensionMismatch indicates two vectors of different lengths were
	// compared. This is a data-integrity fault, not a user error.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyInput indicates Mean was called with no vectors.
	ErrEmptyInput = errors.New("empty vector list")
)

// Similarity returns the dot product of two equal-length vectors.
// For unit vectors this is the cosine similarity.
func Similarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Mean returns the element-wise arithmetic mean of a non-empty list of
// equal-length vectors.
func Mean(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += x
		}
	}

	n := float64(len(vectors))
	for j := range sum {
		sum[j] /= n
	}
	return sum, nil
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

import (
	"context"
	"sort"

	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/metrics"
	"github.com/hadeelfai/ArtScape/internal/store"
	"github.com/hadeelfai/ArtScape/internal/vector"
)

// Ranker scores candidate artworks against a query vector by exhaustive
// scan. Safe for concurrent use; it holds no mutable state.
type Ranker struct {
	defaultTopK int
}

// NewRanker creates a Ranker that falls back to defaultTopK when a
// caller omits topK.
func NewRanker(defaultTopK int) *Ranker {
	return &Ranker{defaultTopK: defaultTopK}
}

// resolveTopK substitutes the default for zero or negative requests.
// There is no upper bound here; request-size limits belong to the API
// layer.
func (r *Ranker) resolveTopK(topK int) int {
	if topK <= 0 {
		return r.defaultTopK
	}
	return topK
}

// Rank scores every candidate against query, sorts by descending
// similarity, and returns min(topK, len(candidates)) results plus the
// number of candidates scanned. The sort is stable: candidates with
// equal scores keep the order the store returned them in, so identical
// inputs produce identical output. Candidates whose embedding does not
// match the query dimension are skipped and counted, never fatal. An
// empty candidate slice is a valid result, not an error.
func (r *Ranker) Rank(ctx context.Context, query []float64, candidates []store.Artwork, topK int) ([]RankedResult, int, error) {
	topK = r.resolveTopK(topK)
	total := len(candidates)
	metrics.RankingCandidatesScanned.Observe(float64(total))

	if total == 0 {
		return []RankedResult{}, 0, nil
	}

	results := make([]RankedResult, 0, total)
	skipped := 0
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		c := &candidates[i]
		score, err := vector.Similarity(query, c.Embedding)
		if err != nil {
			skipped++
			logging.Ctx(ctx).Warn().
				Str("artwork_id", c.ID).
				Int("dimension", len(c.Embedding)).
				Msg("Skipping candidate with malformed embedding")
			continue
		}
		results = append(results, RankedResult{
			ArtworkID:  c.ID,
			Similarity: score,
			Title:      c.Title,
			Artist:     c.Artist,
			Image:      c.Image,
			Price:      c.Price,
			Tags:       c.Tags,
		})
	}
	if skipped > 0 {
		metrics.RankingSkippedCandidates.Add(float64(skipped))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, total, nil
}

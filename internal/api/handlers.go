// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hadeelfai/ArtScape/internal/embed"
	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/recommend"
	"github.com/hadeelfai/ArtScape/internal/store"
)

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	svc       *recommend.Service
	batch     *recommend.BatchProcessor
	store     store.Store
	readiness *Readiness
	maxTopK   int
}

// NewHandler creates the HTTP handler set. maxTopK bounds the top_k
// accepted from callers; the ranking core itself is unbounded.
func NewHandler(svc *recommend.Service, batch *recommend.BatchProcessor, st store.Store, rd *Readiness, maxTopK int) *Handler {
	return &Handler{
		svc:       svc,
		batch:     batch,
		store:     st,
		readiness: rd,
		maxTopK:   maxTopK,
	}
}

// checkTopK rejects requests asking for more results than the API
// allows. Oversized top_k is a caller error, not something to quietly
// shrink.
func (h *Handler) checkTopK(rw *ResponseWriter, topK int) bool {
	if topK > h.maxTopK {
		rw.ValidationError("Validation failed",
			[]string{fmt.Sprintf("top_k must be at most %d", h.maxTopK)})
		return false
	}
	return true
}

// SimilarByItem handles POST /api/v1/recommend/similar.
func (h *Handler) SimilarByItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SimilarRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		rw.ValidationError(err.Error(), validationDetails(err))
		return
	}
	if !h.checkTopK(rw, req.TopK) {
		return
	}

	resp, err := h.svc.SimilarByItem(r.Context(), recommend.SimilarParams{
		ArtworkID:     req.ArtworkID,
		TopK:          req.TopK,
		ExcludeArtist: req.ExcludeArtist,
	})
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// SimilarByText handles POST /api/v1/recommend/text.
func (h *Handler) SimilarByText(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req TextRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		rw.ValidationError(err.Error(), validationDetails(err))
		return
	}
	if !h.checkTopK(rw, req.TopK) {
		return
	}

	resp, err := h.svc.SimilarByText(r.Context(), recommend.TextParams{
		Query: req.Query,
		TopK:  req.TopK,
	})
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// Personalized handles POST /api/v1/recommend/personalized.
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PersonalizedRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		rw.ValidationError(err.Error(), validationDetails(err))
		return
	}
	if !h.checkTopK(rw, req.TopK) {
		return
	}

	resp, err := h.svc.Personalized(r.Context(), recommend.PersonalizedParams{
		UserID: req.UserID,
		TopK:   req.TopK,
	})
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// GenerateEmbedding handles POST /api/v1/embeddings/generate.
func (h *Handler) GenerateEmbedding(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req GenerateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		rw.ValidationError(err.Error(), validationDetails(err))
		return
	}

	resp, err := h.svc.GenerateEmbedding(r.Context(), req.ArtworkID)
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// BatchGenerateEmbeddings handles POST /api/v1/embeddings/batch.
func (h *Handler) BatchGenerateEmbeddings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req BatchRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		rw.ValidationError(err.Error(), validationDetails(err))
		return
	}

	result, err := h.batch.Run(r.Context(), recommend.BatchParams{
		Limit: req.Limit,
		Force: req.Force,
	})
	if err != nil {
		if result != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// Interrupted runs still report their partial counts.
			result.Message = "Batch run interrupted"
			rw.Success(result)
			return
		}
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(result)
}

// healthStatus is the payload of the health endpoints.
type healthStatus struct {
	Status           string `json:"status"`
	Ready            bool   `json:"ready"`
	TotalArtworks    int    `json:"total_artworks,omitempty"`
	EmbeddedArtworks int    `json:"embedded_artworks,omitempty"`
	Timestamp        string `json:"timestamp"`
}

// Health handles GET /api/v1/health with store statistics.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := healthStatus{
		Status:    "ok",
		Ready:     h.readiness.Ready(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.readiness.Ready() {
		total, embedded, err := h.store.Counts(r.Context())
		if err != nil {
			rw.StorageError(err)
			return
		}
		status.TotalArtworks = total
		status.EmbeddedArtworks = embedded
	} else {
		status.Status = "starting"
	}
	rw.Success(status)
}

// HealthLive handles GET /api/v1/health/live. Always 200 while the
// process can serve requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(healthStatus{
		Status:    "ok",
		Ready:     h.readiness.Ready(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthReady handles GET /api/v1/health/ready. 503 until startup
// initialization finishes and the store answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.readiness.Ready() {
		rw.NotReady()
		return
	}
	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Readiness ping failed")
		rw.Error(http.StatusServiceUnavailable, ErrCodeNotReady, "Store is unreachable")
		return
	}
	rw.Success(healthStatus{
		Status:    "ok",
		Ready:     true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps recommendation core errors to HTTP responses.
func (h *Handler) writeServiceError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrArtworkNotFound):
		rw.NotFound("Artwork not found")
	case errors.Is(err, store.ErrUserNotFound):
		rw.NotFound("User not found")
	case errors.Is(err, recommend.ErrMissingEmbedding):
		rw.Conflict("Artwork has no embedding yet")
	case errors.Is(err, recommend.ErrNoImage):
		rw.BadRequest("Artwork has no image to embed")
	case errors.Is(err, recommend.ErrEmptyQuery):
		rw.BadRequest("Query text must not be empty")
	case errors.Is(err, embed.ErrGenerationFailed):
		rw.ExternalServiceError("clip-embedding", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "Request cancelled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unhandled service error")
		rw.InternalError("An internal error occurred")
	}
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP routes and their middleware stacks.
type Router struct {
	handler    *Handler
	middleware *Middleware
	readiness  *Readiness
}

// NewRouter creates the service router.
func NewRouter(handler *Handler, mw *Middleware, rd *Readiness) *Router {
	return &Router{
		handler:    handler,
		middleware: mw,
		readiness:  rd,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health endpoints stay outside the readiness gate so orchestrators
	// can probe during startup.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Recommendation endpoints.
	r.Route("/api/v1/recommend", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)
		r.Use(RequireReady(router.readiness))

		r.Post("/similar", router.handler.SimilarByItem)
		r.Post("/text", router.handler.SimilarByText)
		r.Post("/personalized", router.handler.Personalized)
	})

	// Embedding generation endpoints.
	r.Route("/api/v1/embeddings", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)
		r.Use(RequireReady(router.readiness))

		r.Post("/generate", router.handler.GenerateEmbedding)
		r.Post("/batch", router.handler.BatchGenerateEmbeddings)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/hadeelfai/ArtScape/internal/config"
	"github.com/hadeelfai/ArtScape/internal/embed"
	"github.com/hadeelfai/ArtScape/internal/recommend"
	"github.com/hadeelfai/ArtScape/internal/store"
)

// stubGenerator returns fixed vectors without a sidecar.
type stubGenerator struct {
	imageVec []float64
	textVec  []float64
	err      error
}

func (g *stubGenerator) EmbedImage(context.Context, string) ([]float64, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.imageVec, nil
}

func (g *stubGenerator) EmbedText(context.Context, string) ([]float64, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.textVec, nil
}

type testServer struct {
	store     *store.BadgerStore
	gen       *stubGenerator
	readiness *Readiness
	srv       *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.OpenBadger(store.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	gen := &stubGenerator{
		imageVec: []float64{1, 0, 0},
		textVec:  []float64{0, 1, 0},
	}
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Dimension: 3},
		Recommend: config.RecommendConfig{DefaultTopK: 20, MaxTopK: 100, BatchLimit: 100},
		API: config.APIConfig{
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}

	rd := &Readiness{}
	svc := recommend.NewService(st, gen, cfg)
	batch := recommend.NewBatchProcessor(st, gen, cfg.Recommend.BatchLimit)
	handler := NewHandler(svc, batch, st, rd, cfg.Recommend.MaxTopK)
	mw := NewMiddleware(MiddlewareConfig{
		RateLimitRequests: cfg.API.RateLimitReqs,
		RateLimitWindow:   cfg.API.RateLimitWindow,
	})
	router := NewRouter(handler, mw, rd)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)

	return &testServer{store: st, gen: gen, readiness: rd, srv: srv}
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) (*http.Response, APIResponse) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.srv.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func (ts *testServer) get(t *testing.T, path string) (*http.Response, APIResponse) {
	t.Helper()
	resp, err := http.Get(ts.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func (ts *testServer) seedArtwork(t *testing.T, id, artist string, emb []float64) {
	t.Helper()
	a := &store.Artwork{
		ID:        id,
		Artist:    artist,
		Image:     "https://img.test/" + id + ".jpg",
		Embedding: emb,
	}
	if err := ts.store.PutArtwork(context.Background(), a); err != nil {
		t.Fatalf("PutArtwork() error = %v", err)
	}
}

// dataField re-decodes the envelope Data into a typed struct.
func dataField(t *testing.T, envelope APIResponse, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestRequireReadyGate(t *testing.T) {
	ts := newTestServer(t)
	// Readiness not flipped: request paths return 503 NOT_READY.
	resp, envelope := ts.post(t, "/api/v1/recommend/similar", SimilarRequest{ArtworkID: "a"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotReady {
		t.Errorf("error = %+v, want code NOT_READY", envelope.Error)
	}

	ts.seedArtwork(t, "a", "alice", []float64{1, 0, 0})
	ts.seedArtwork(t, "b", "bob", []float64{0, 1, 0})
	ts.readiness.SetReady()

	resp, _ = ts.post(t, "/api/v1/recommend/similar", SimilarRequest{ArtworkID: "a"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after ready = %d, want 200", resp.StatusCode)
	}
}

func TestSimilarEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "source", "alice", []float64{1, 0, 0})
	ts.seedArtwork(t, "near", "bob", []float64{0.9, 0.435889894354, 0})
	ts.seedArtwork(t, "far", "carol", []float64{0, 1, 0})
	ts.readiness.SetReady()

	resp, envelope := ts.post(t, "/api/v1/recommend/similar", SimilarRequest{ArtworkID: "source"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !envelope.Success {
		t.Fatalf("envelope = %+v, want success", envelope)
	}

	var data recommend.SimilarResponse
	dataField(t, envelope, &data)
	if data.SourceArtworkID != "source" {
		t.Errorf("SourceArtworkID = %q, want source", data.SourceArtworkID)
	}
	if data.TotalCompared != 2 {
		t.Errorf("TotalCompared = %d, want 2", data.TotalCompared)
	}
	if len(data.Recommendations) != 2 || data.Recommendations[0].ArtworkID != "near" {
		t.Errorf("recommendations = %+v, want near first", data.Recommendations)
	}
}

func TestSimilarEndpointErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "raw", "alice", nil)
	ts.readiness.SetReady()

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"missing artwork_id", SimilarRequest{}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"unknown artwork", SimilarRequest{ArtworkID: "ghost"}, http.StatusNotFound, ErrCodeNotFound},
		{"artwork without embedding", SimilarRequest{ArtworkID: "raw"}, http.StatusConflict, ErrCodeConflict},
		{"top_k over limit", SimilarRequest{ArtworkID: "raw", TopK: 101}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"malformed json", "not-an-object", http.StatusBadRequest, ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envelope := ts.post(t, "/api/v1/recommend/similar", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.wantCode)
			}
		})
	}
}

func TestTextEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "match", "alice", []float64{0, 1, 0})
	ts.seedArtwork(t, "miss", "bob", []float64{1, 0, 0})
	ts.readiness.SetReady()

	resp, envelope := ts.post(t, "/api/v1/recommend/text", TextRequest{Query: "blue abstract"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var data recommend.TextResponse
	dataField(t, envelope, &data)
	if data.Query != "blue abstract" {
		t.Errorf("Query = %q", data.Query)
	}
	if data.TotalCompared != 2 {
		t.Errorf("TotalCompared = %d, want 2", data.TotalCompared)
	}
	if data.Recommendations[0].ArtworkID != "match" {
		t.Errorf("top = %q, want match", data.Recommendations[0].ArtworkID)
	}
}

func TestTextEndpointSidecarDown(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "a", "alice", []float64{1, 0, 0})
	ts.readiness.SetReady()
	ts.gen.err = errGeneration

	resp, envelope := ts.post(t, "/api/v1/recommend/text", TextRequest{Query: "anything"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeExternalServiceFail {
		t.Errorf("error = %+v, want EXTERNAL_SERVICE_FAILED", envelope.Error)
	}
}

func TestPersonalizedEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "liked", "alice", []float64{1, 0, 0})
	ts.seedArtwork(t, "fresh", "bob", []float64{1, 0, 0})
	if err := ts.store.PutUser(context.Background(), &store.User{
		ID:            "u1",
		LikedArtworks: []string{"liked"},
	}); err != nil {
		t.Fatalf("PutUser() error = %v", err)
	}
	ts.readiness.SetReady()

	resp, envelope := ts.post(t, "/api/v1/recommend/personalized", PersonalizedRequest{UserID: "u1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var data recommend.PersonalizedResponse
	dataField(t, envelope, &data)
	if data.BasedOnItems != 1 {
		t.Errorf("BasedOnItems = %d, want 1", data.BasedOnItems)
	}
	if len(data.Recommendations) != 1 || data.Recommendations[0].ArtworkID != "fresh" {
		t.Errorf("recommendations = %+v, want only fresh", data.Recommendations)
	}
}

func TestPersonalizedEndpointNoHistory(t *testing.T) {
	ts := newTestServer(t)
	if err := ts.store.PutUser(context.Background(), &store.User{ID: "u1"}); err != nil {
		t.Fatalf("PutUser() error = %v", err)
	}
	ts.readiness.SetReady()

	resp, envelope := ts.post(t, "/api/v1/recommend/personalized", PersonalizedRequest{UserID: "u1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no history is not an error)", resp.StatusCode)
	}

	var data recommend.PersonalizedResponse
	dataField(t, envelope, &data)
	if data.Message == "" {
		t.Error("expected explanatory message for empty history")
	}
	if data.BasedOnItems != 0 || len(data.Recommendations) != 0 {
		t.Errorf("data = %+v, want empty result", data)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "raw", "alice", nil)
	ts.readiness.SetReady()

	resp, envelope := ts.post(t, "/api/v1/embeddings/generate", GenerateRequest{ArtworkID: "raw"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var data recommend.EmbedResponse
	dataField(t, envelope, &data)
	if data.ArtworkID != "raw" || data.Dimension != 3 {
		t.Errorf("data = %+v, want raw/3", data)
	}

	a, err := ts.store.GetArtwork(context.Background(), "raw")
	if err != nil {
		t.Fatalf("GetArtwork() error = %v", err)
	}
	if !a.HasEmbedding() {
		t.Error("embedding not persisted")
	}
}

func TestBatchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedArtwork(t, "todo1", "a", nil)
	ts.seedArtwork(t, "todo2", "b", nil)
	ts.seedArtwork(t, "done", "c", []float64{1, 0, 0})
	ts.readiness.SetReady()

	resp, envelope := ts.post(t, "/api/v1/embeddings/batch", BatchRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var data recommend.BatchResult
	dataField(t, envelope, &data)
	if data.Processed != 2 || data.Failed != 0 || data.Total != 2 {
		t.Errorf("data = %+v, want processed=2 failed=0 total=2", data)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.get(t, "/api/v1/health/live")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live status = %d, want 200 even before ready", resp.StatusCode)
	}

	resp, envelope := ts.get(t, "/api/v1/health/ready")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503 before ready", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotReady {
		t.Errorf("error = %+v, want NOT_READY", envelope.Error)
	}

	ts.seedArtwork(t, "a", "alice", []float64{1, 0, 0})
	ts.readiness.SetReady()

	resp, envelope = ts.get(t, "/api/v1/health/ready")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d, want 200 after ready", resp.StatusCode)
	}

	resp, envelope = ts.get(t, "/api/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	var data healthStatus
	dataField(t, envelope, &data)
	if data.TotalArtworks != 1 || data.EmbeddedArtworks != 1 {
		t.Errorf("counts = %d/%d, want 1/1", data.TotalArtworks, data.EmbeddedArtworks)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.get(t, "/api/v1/health/live")
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing from response")
	}
}

var errGeneration = fmt.Errorf("sidecar unreachable: %w", embed.ErrGenerationFailed)

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package embed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/hadeelfai/ArtScape/internal/config"
)

// Client is a REST client for the CLIP embedding sidecar service.
//
// The sidecar exposes two endpoints, both returning an L2-normalized
// vector of the configured dimension:
//
//	POST /embed/image {"url": "..."}   -> {"embedding": [...]}
//	POST /embed/text  {"text": "..."}  -> {"embedding": [...]}
type Client struct {
	baseURL    string
	dimension  int
	httpClient *http.Client
}

// Ensure Client implements Generator.
var _ Generator = (*Client)(nil)

// NewClient creates a new embedding service client.
func NewClient(cfg config.EmbeddingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.ServiceURL, "/"),
		dimension: cfg.Dimension,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// embedRequest is the request body for both sidecar endpoints.
type embedRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// embedResponse is the sidecar response body.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// EmbedImage returns the embedding for the image at the given URL.
func (c *Client) EmbedImage(ctx context.Context, imageURL string) ([]float64, error) {
	return c.embed(ctx, "/embed/image", embedRequest{URL: imageURL})
}

// EmbedText returns the embedding for a free-text query.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return c.embed(ctx, "/embed/text", embedRequest{Text: text})
}

func (c *Client) embed(ctx context.Context, endpoint string, reqBody embedRequest) ([]float64, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return nil, fmt.Errorf("%w: embedding service returned status %d", ErrGenerationFailed, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: embedding service returned status %d: %s", ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, decoded.Error)
	}

	// The dimension is a configured constant; a vector of any other length
	// would poison every comparison downstream.
	if len(decoded.Embedding) != c.dimension {
		return nil, fmt.Errorf("%w: service returned %d dimensions, expected %d",
			ErrGenerationFailed, len(decoded.Embedding), c.dimension)
	}

	return decoded.Embedding, nil
}

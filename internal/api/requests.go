// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// maxBodySize caps request bodies. Recommendation requests are small
// JSON documents; anything bigger is malformed or hostile.
const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// SimilarRequest is the body of POST /recommend/similar.
type SimilarRequest struct {
	ArtworkID     string `json:"artwork_id" validate:"required,min=1"`
	TopK          int    `json:"top_k" validate:"min=0"`
	ExcludeArtist bool   `json:"exclude_artist"`
}

// TextRequest is the body of POST /recommend/text.
type TextRequest struct {
	Query string `json:"query" validate:"required,min=1"`
	TopK  int    `json:"top_k" validate:"min=0"`
}

// PersonalizedRequest is the body of POST /recommend/personalized.
type PersonalizedRequest struct {
	UserID string `json:"user_id" validate:"required,min=1"`
	TopK   int    `json:"top_k" validate:"min=0"`
}

// GenerateRequest is the body of POST /embeddings/generate.
type GenerateRequest struct {
	ArtworkID string `json:"artwork_id" validate:"required,min=1"`
}

// BatchRequest is the body of POST /embeddings/batch.
type BatchRequest struct {
	Limit int  `json:"limit" validate:"min=0"`
	Force bool `json:"force"`
}

// decodeAndValidate parses the JSON body into v and runs struct
// validation. A nil return means v is ready to use.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// validationDetails turns validator errors into per-field messages for
// the response envelope.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("field %q failed %q validation", fe.Field(), fe.Tag()))
	}
	return details
}

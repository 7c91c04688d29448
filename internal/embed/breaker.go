// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/hadeelfai/ArtScape/internal/logging"
	"github.com/hadeelfai/ArtScape/internal/metrics"
)

// BreakerGenerator wraps a Generator with a circuit breaker so a slow or
// down embedding service cannot pile up blocked requests.
//
// The breaker uses real time for its interval and timeout calculations;
// tests should exercise the wrapped generator directly.
type BreakerGenerator struct {
	inner Generator
	cb    *gobreaker.CircuitBreaker[[]float64]
	name  string
}

// Ensure BreakerGenerator implements Generator.
var _ Generator = (*BreakerGenerator)(nil)

// NewBreakerGenerator wraps the given generator with a circuit breaker.
// The circuit opens after a 60% failure rate over at least 10 requests,
// and probes recovery after 2 minutes.
func NewBreakerGenerator(inner Generator) *BreakerGenerator {
	const cbName = "clip-embedding"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3, // Allowed through in half-open state
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// A caller abandoning its request says nothing about the
		// embedding service's health; counting those as failures would
		// let a burst of client disconnects open the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening embedding service circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerGenerator{inner: inner, cb: cb, name: cbName}
}

// EmbedImage delegates through the circuit breaker.
func (b *BreakerGenerator) EmbedImage(ctx context.Context, imageURL string) ([]float64, error) {
	return b.execute(func() ([]float64, error) {
		return b.inner.EmbedImage(ctx, imageURL)
	})
}

// EmbedText delegates through the circuit breaker.
func (b *BreakerGenerator) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return b.execute(func() ([]float64, error) {
		return b.inner.EmbedText(ctx, text)
	})
}

func (b *BreakerGenerator) execute(fn func() ([]float64, error)) ([]float64, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: embedding service unavailable: %v", ErrGenerationFailed, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// stateToString converts circuit breaker state to a readable string.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// stateToFloat converts circuit breaker state to a metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

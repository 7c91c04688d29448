// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

// Package config provides layered configuration for the recommendation
// service using Koanf v2.
//
// Loading order:
//  1. Defaults: built-in sensible values for every setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting (SERVER_PORT, STORE_PATH, ...)
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `koanf:"host"`

	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown on exit.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StoreConfig holds artwork store settings.
type StoreConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory opens a non-persistent store. Used in tests and demos.
	InMemory bool `koanf:"in_memory"`
}

// EmbeddingConfig holds settings for the external CLIP embedding service.
type EmbeddingConfig struct {
	// ServiceURL is the base URL of the CLIP sidecar service.
	ServiceURL string `koanf:"service_url"`

	// Dimension is the globally agreed embedding dimension D.
	// Every vector produced or compared must have this length.
	Dimension int `koanf:"dimension"`

	// Timeout is the per-call timeout for embedding generation.
	Timeout time.Duration `koanf:"timeout"`

	// CacheSize is the capacity of the content-to-vector LRU cache.
	CacheSize int `koanf:"cache_size"`

	// CacheTTL is how long cached vectors stay valid.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// DefaultTopK is used when a request omits top_k.
	DefaultTopK int `koanf:"default_top_k"`

	// MaxTopK caps top_k accepted from API callers.
	MaxTopK int `koanf:"max_top_k"`

	// BatchEnabled turns on the periodic embedding sweep.
	BatchEnabled bool `koanf:"batch_enabled"`

	// BatchLimit is the maximum artworks processed per batch run.
	BatchLimit int `koanf:"batch_limit"`

	// BatchInterval is how often the periodic sweep runs.
	BatchInterval time.Duration `koanf:"batch_interval"`
}

// APIConfig holds API surface settings.
type APIConfig struct {
	// RateLimitReqs is the allowed requests per window per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for malformed values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Embedding.ServiceURL == "" {
		return fmt.Errorf("embedding.service_url is required")
	}
	if c.Recommend.DefaultTopK <= 0 {
		return fmt.Errorf("recommend.default_top_k must be positive, got %d", c.Recommend.DefaultTopK)
	}
	if c.Recommend.MaxTopK < c.Recommend.DefaultTopK {
		return fmt.Errorf("recommend.max_top_k (%d) must be >= recommend.default_top_k (%d)",
			c.Recommend.MaxTopK, c.Recommend.DefaultTopK)
	}
	if c.Recommend.BatchLimit <= 0 {
		return fmt.Errorf("recommend.batch_limit must be positive, got %d", c.Recommend.BatchLimit)
	}
	return nil
}

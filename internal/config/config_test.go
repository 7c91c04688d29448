// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 5001 {
		t.Errorf("Server.Port = %d, want 5001", cfg.Server.Port)
	}
	if cfg.Embedding.Dimension != 512 {
		t.Errorf("Embedding.Dimension = %d, want 512", cfg.Embedding.Dimension)
	}
	if cfg.Recommend.DefaultTopK != 20 {
		t.Errorf("Recommend.DefaultTopK = %d, want 20", cfg.Recommend.DefaultTopK)
	}
	if cfg.Recommend.BatchEnabled {
		t.Error("Recommend.BatchEnabled should default to false")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("EMBEDDING_DIMENSION", "256")
	t.Setenv("RECOMMEND_DEFAULT_TOP_K", "5")
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Dimension != 256 {
		t.Errorf("Embedding.Dimension = %d, want 256", cfg.Embedding.Dimension)
	}
	if cfg.Recommend.DefaultTopK != 5 {
		t.Errorf("Recommend.DefaultTopK = %d, want 5", cfg.Recommend.DefaultTopK)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9000\nembedding:\n  service_url: http://clip:6000\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Embedding.ServiceURL != "http://clip:6000" {
		t.Errorf("Embedding.ServiceURL = %q, want %q", cfg.Embedding.ServiceURL, "http://clip:6000")
	}
	// Unspecified values keep defaults
	if cfg.Embedding.Dimension != 512 {
		t.Errorf("Embedding.Dimension = %d, want 512", cfg.Embedding.Dimension)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("env should beat file: Server.Port = %d, want 7000", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaultConfig()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing store path", func(c *Config) { c.Store.Path = "" }, true},
		{"in-memory store needs no path", func(c *Config) { c.Store.Path = ""; c.Store.InMemory = true }, false},
		{"zero dimension", func(c *Config) { c.Embedding.Dimension = 0 }, true},
		{"missing service url", func(c *Config) { c.Embedding.ServiceURL = "" }, true},
		{"zero default top k", func(c *Config) { c.Recommend.DefaultTopK = 0 }, true},
		{"max below default", func(c *Config) { c.Recommend.MaxTopK = 5 }, true},
		{"zero batch limit", func(c *Config) { c.Recommend.BatchLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"EMBEDDING_SERVICE_URL", "embedding.service_url"},
		{"RECOMMEND_DEFAULT_TOP_K", "recommend.default_top_k"},
		{"STORE_IN_MEMORY", "store.in_memory"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultTimeouts(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Recommend.BatchInterval != 15*time.Minute {
		t.Errorf("Recommend.BatchInterval = %v, want 15m", cfg.Recommend.BatchInterval)
	}
}

// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package recommend

import (
	"context"
	"sync"

	"github.com/hadeelfai/ArtScape/internal/embed"
	"github.com/hadeelfai/ArtScape/internal/store"
)

// fakeStore is an in-memory Store for tests. Iteration order follows
// insertion order, which stands in for the key-ordered scans of the
// real store.
type fakeStore struct {
	mu       sync.Mutex
	order    []string
	artworks map[string]store.Artwork
	users    map[string]store.User
	setErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		artworks: make(map[string]store.Artwork),
		users:    make(map[string]store.User),
	}
}

func (f *fakeStore) add(a store.Artwork) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.artworks[a.ID]; !ok {
		f.order = append(f.order, a.ID)
	}
	f.artworks[a.ID] = a
}

func (f *fakeStore) GetArtwork(_ context.Context, id string) (*store.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artworks[id]
	if !ok {
		return nil, store.ErrArtworkNotFound
	}
	return &a, nil
}

func (f *fakeStore) GetArtworks(_ context.Context, ids []string) ([]store.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Artwork, 0, len(ids))
	for _, id := range ids {
		if a, ok := f.artworks[id]; ok && a.HasEmbedding() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AllWithEmbedding(_ context.Context, excluding map[string]struct{}, filter *store.Filter) ([]store.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Artwork, 0, len(f.order))
	for _, id := range f.order {
		a := f.artworks[id]
		if !a.HasEmbedding() {
			continue
		}
		if _, skip := excluding[id]; skip {
			continue
		}
		if !filter.Match(&a) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeStore) PutArtwork(_ context.Context, a *store.Artwork) error {
	f.add(*a)
	return nil
}

func (f *fakeStore) PutUser(_ context.Context, u *store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeStore) SetEmbedding(_ context.Context, id string, embedding []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	a, ok := f.artworks[id]
	if !ok {
		return store.ErrArtworkNotFound
	}
	a.Embedding = embedding
	f.artworks[id] = a
	return nil
}

func (f *fakeStore) ArtworksForEmbedding(_ context.Context, limit int, force bool) ([]store.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Artwork, 0)
	for _, id := range f.order {
		a := f.artworks[id]
		if !force && a.HasEmbedding() {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) Counts(_ context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	embedded := 0
	for _, a := range f.artworks {
		if a.HasEmbedding() {
			embedded++
		}
	}
	return len(f.artworks), embedded, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

var _ store.Store = (*fakeStore)(nil)

// fakeGenerator returns canned vectors and records calls.
type fakeGenerator struct {
	mu         sync.Mutex
	imageVecs  map[string][]float64
	textVecs   map[string][]float64
	err        error
	imageCalls []string
	textCalls  []string
}

var _ embed.Generator = (*fakeGenerator)(nil)

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		imageVecs: make(map[string][]float64),
		textVecs:  make(map[string][]float64),
	}
}

func (g *fakeGenerator) EmbedImage(_ context.Context, imageURL string) ([]float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.imageCalls = append(g.imageCalls, imageURL)
	if g.err != nil {
		return nil, g.err
	}
	if v, ok := g.imageVecs[imageURL]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

func (g *fakeGenerator) EmbedText(_ context.Context, text string) ([]float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.textCalls = append(g.textCalls, text)
	if g.err != nil {
		return nil, g.err
	}
	if v, ok := g.textVecs[text]; ok {
		return v, nil
	}
	return []float64{0, 1, 0}, nil
}

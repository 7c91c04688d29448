// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/hadeelfai/ArtScape/internal/logging"
)

// Key prefixes for BadgerDB storage.
const (
	artworkKeyPrefix = "artwork:"
	userKeyPrefix    = "user:"
)

// BadgerStore implements Store using BadgerDB for durable document storage.
// Records are JSON documents keyed by prefixed ids. Badger iterates keys in
// lexicographic order, which keeps scan order deterministic across requests
// against an unchanged catalog.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures how the store is opened.
type BadgerOptions struct {
	// Path is the on-disk location of the database. Ignored when InMemory
	// is set.
	Path string

	// InMemory opens a non-persistent database. Used in tests.
	InMemory bool
}

// OpenBadger opens (creating if necessary) a Badger-backed store.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger's default logger writes to stderr outside our structured
	// logging; silence it and log lifecycle events ourselves.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	logging.Info().Str("path", opts.Path).Bool("in_memory", opts.InMemory).Msg("Artwork store opened")

	return &BadgerStore{db: db}, nil
}

// GetArtwork returns the artwork by id, or ErrArtworkNotFound.
func (s *BadgerStore) GetArtwork(ctx context.Context, id string) (*Artwork, error) {
	var artwork Artwork

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(artworkKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrArtworkNotFound
		}
		if err != nil {
			return fmt.Errorf("get artwork: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &artwork)
		})
	})
	if err != nil {
		return nil, err
	}

	return &artwork, nil
}

// GetArtworks returns the subset of ids that exist and carry an embedding.
// Missing ids and unembedded artworks are skipped, never reported as errors.
func (s *BadgerStore) GetArtworks(ctx context.Context, ids []string) ([]Artwork, error) {
	artworks := make([]Artwork, 0, len(ids))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}

			item, err := txn.Get([]byte(artworkKeyPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get artwork %s: %w", id, err)
			}

			var artwork Artwork
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &artwork)
			}); err != nil {
				return fmt.Errorf("decode artwork %s: %w", id, err)
			}

			if artwork.HasEmbedding() {
				artworks = append(artworks, artwork)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return artworks, nil
}

// AllWithEmbedding scans the full artwork keyspace and returns every
// embedded artwork not named in excluding that passes the filter.
func (s *BadgerStore) AllWithEmbedding(ctx context.Context, excluding map[string]struct{}, filter *Filter) ([]Artwork, error) {
	var artworks []Artwork

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artworkKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var artwork Artwork
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &artwork)
			}); err != nil {
				return fmt.Errorf("decode artwork %s: %w", it.Item().Key(), err)
			}

			if !artwork.HasEmbedding() {
				continue
			}
			if _, skip := excluding[artwork.ID]; skip {
				continue
			}
			if !filter.Match(&artwork) {
				continue
			}

			artworks = append(artworks, artwork)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return artworks, nil
}

// GetUser returns the user by id, or ErrUserNotFound.
func (s *BadgerStore) GetUser(ctx context.Context, id string) (*User, error) {
	var user User

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// PutArtwork creates or replaces an artwork record.
func (s *BadgerStore) PutArtwork(ctx context.Context, a *Artwork) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artwork: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(artworkKeyPrefix+a.ID), data)
	})
}

// PutUser creates or replaces a user record.
func (s *BadgerStore) PutUser(ctx context.Context, u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix+u.ID), data)
	})
}

// SetEmbedding attaches an embedding to an existing artwork in a single
// read-modify-write transaction. The vector is written to the one canonical
// embedding field read by ranking queries.
func (s *BadgerStore) SetEmbedding(ctx context.Context, id string, embedding []float64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(artworkKeyPrefix + id)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrArtworkNotFound
		}
		if err != nil {
			return fmt.Errorf("get artwork: %w", err)
		}

		var artwork Artwork
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &artwork)
		}); err != nil {
			return fmt.Errorf("decode artwork: %w", err)
		}

		now := time.Now().UTC()
		artwork.Embedding = embedding
		artwork.EmbeddingUpdatedAt = &now

		data, err := json.Marshal(&artwork)
		if err != nil {
			return fmt.Errorf("marshal artwork: %w", err)
		}
		return txn.Set(key, data)
	})
}

// ArtworksForEmbedding returns up to limit artworks needing an embedding.
// With force set, embedded artworks are included for regeneration.
func (s *BadgerStore) ArtworksForEmbedding(ctx context.Context, limit int, force bool) ([]Artwork, error) {
	var artworks []Artwork

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artworkKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(artworks) >= limit {
				return nil
			}

			var artwork Artwork
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &artwork)
			}); err != nil {
				return fmt.Errorf("decode artwork %s: %w", it.Item().Key(), err)
			}

			if artwork.HasEmbedding() && !force {
				continue
			}
			artworks = append(artworks, artwork)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return artworks, nil
}

// Counts returns the total artwork count and how many carry embeddings.
func (s *BadgerStore) Counts(ctx context.Context) (int, int, error) {
	var total, embedded int

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artworkKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			total++
			var artwork Artwork
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &artwork)
			}); err != nil {
				return fmt.Errorf("decode artwork %s: %w", it.Item().Key(), err)
			}
			if artwork.HasEmbedding() {
				embedded++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return total, embedded, nil
}

// Ping verifies the database is open and readable.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("store is closed")
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Ensure BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)

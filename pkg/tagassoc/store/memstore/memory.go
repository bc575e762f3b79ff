package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	ids     *store.IDSource
	bundles map[string]store.Bundle
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:     store.NewIDSource(),
		bundles: make(map[string]store.Bundle),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveBundle stores a copy of b.
func (s *Store) SaveBundle(ctx context.Context, b store.Bundle) (string, error) {
	if err := b.Check(); err != nil {
		return "", err
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = s.ids.New(b.CreatedAt)
	}
	c, err := copyBundle(b)
	if err != nil {
		return "", err
	}
	s.bundles[b.ID] = c
	return b.ID, nil
}

// LoadBundle returns a copy of the bundle with the given ID.
func (s *Store) LoadBundle(ctx context.Context, id string) (store.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bundles[id]
	if !ok {
		return store.Bundle{}, fmt.Errorf("bundle %s: %w", id, internalerr.ErrNotFound)
	}
	return copyBundle(b)
}

// LatestBundle returns the bundle of the given kind with the greatest ID.
func (s *Store) LatestBundle(ctx context.Context, kind store.Kind) (store.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest string
	for id, b := range s.bundles {
		if b.Kind == kind && id > latest {
			latest = id
		}
	}
	if latest == "" {
		return store.Bundle{}, fmt.Errorf("no %s bundle: %w", kind, internalerr.ErrNotFound)
	}
	return copyBundle(s.bundles[latest])
}

// ListBundles describes every bundle, oldest first.
func (s *Store) ListBundles(ctx context.Context) ([]store.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Info, 0, len(s.bundles))
	for _, b := range s.bundles {
		out = append(out, b.Info())
	}
	slices.SortFunc(out, func(a, b store.Info) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteBundle removes a bundle.
func (s *Store) DeleteBundle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bundles[id]; !ok {
		return fmt.Errorf("bundle %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.bundles, id)
	return nil
}

func copyBundle(b store.Bundle) (store.Bundle, error) {
	m, err := sparse.FromRaw(b.Matrix.Raw())
	if err != nil {
		return store.Bundle{}, err
	}
	b.Matrix = m
	b.Tags = slices.Clone(b.Tags)
	return b, nil
}

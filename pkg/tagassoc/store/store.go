// Package store persists built matrices together with the tag table and post
// count they were computed from.
package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
	"github.com/cognicore/tagassoc/pkg/tagassoc/tags"
)

// Kind says which stage of the pipeline a bundle's matrix comes from.
type Kind string

const (
	KindCooccurrence Kind = "cooccurrence"
	KindAssociation  Kind = "association"
)

// Store is the interface for saving and loading bundles.
type Store interface {
	Close() error

	// SaveBundle assigns an ID when b.ID is empty and returns it.
	SaveBundle(ctx context.Context, b Bundle) (string, error)
	LoadBundle(ctx context.Context, id string) (Bundle, error)
	// LatestBundle returns the most recently saved bundle of the given kind.
	LatestBundle(ctx context.Context, kind Kind) (Bundle, error)
	ListBundles(ctx context.Context) ([]Info, error)
	DeleteBundle(ctx context.Context, id string) error
}

// Bundle is a matrix plus the inputs needed to interpret it.
type Bundle struct {
	ID        string
	Kind      Kind
	Formula   string // association bundles only
	PostCount int
	Tags      []tags.Entry
	Matrix    *sparse.Matrix
	CreatedAt time.Time
}

// Info describes a stored bundle without loading its matrix.
type Info struct {
	ID        string
	Kind      Kind
	Formula   string
	PostCount int
	Rows      int
	Cols      int
	NNZ       int
	TagCount  int
	CreatedAt time.Time
}

// Info summarizes b.
func (b Bundle) Info() Info {
	info := Info{
		ID:        b.ID,
		Kind:      b.Kind,
		Formula:   b.Formula,
		PostCount: b.PostCount,
		TagCount:  len(b.Tags),
		CreatedAt: b.CreatedAt,
	}
	if b.Matrix != nil {
		info.Rows, info.Cols = b.Matrix.Shape()
		info.NNZ = b.Matrix.NNZ()
	}
	return info
}

// Check rejects bundles that cannot be saved.
func (b Bundle) Check() error {
	if b.Matrix == nil {
		return fmt.Errorf("bundle without matrix: %w", internalerr.ErrInvalidInput)
	}
	switch b.Kind {
	case KindCooccurrence, KindAssociation:
	default:
		return fmt.Errorf("bundle kind %q: %w", b.Kind, internalerr.ErrInvalidInput)
	}
	if b.PostCount < 0 {
		return fmt.Errorf("post count %d: %w", b.PostCount, internalerr.ErrInvalidInput)
	}
	rows, cols := b.Matrix.Shape()
	if len(b.Tags) < max(rows, cols) {
		return fmt.Errorf("%d tags for a %dx%d matrix: %w", len(b.Tags), rows, cols, internalerr.ErrInvalidInput)
	}
	return nil
}

// IDSource hands out ULIDs that sort in creation order, also within one
// millisecond.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an ID source seeded from crypto/rand.
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns an ID stamped with t.
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

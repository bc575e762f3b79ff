// Package query answers "which tags are most related to these tags" from an
// association matrix.
package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
	"github.com/cognicore/tagassoc/pkg/tagassoc/rank"
	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
)

// Related returns the n tags with the highest mean association to the seed
// set.
//
// For each seed, every (candidate, score) in its row is added to the
// candidate's running sum, skipping candidates that are themselves seeds.
// Each candidate's score is then its mean over the rows it appeared in;
// non-positive means are dropped. Ties are broken by ascending tag ID.
// Repeated seeds count once. n <= 0 returns every candidate.
func Related(m *sparse.Matrix, seeds []int, n int) ([]rank.Scored, error) {
	set := normalizeSeeds(seeds)
	for _, s := range set {
		if s < 0 || s >= m.Rows() {
			return nil, fmt.Errorf("seed %d: %w", s, sparse.ErrOutOfRange)
		}
	}

	acc := rank.NewAccumulator(m.Cols())
	for _, s := range set {
		for cand, score := range m.Row(s) {
			if _, isSeed := slices.BinarySearch(set, cand); isSeed {
				continue
			}
			acc.Add(cand, score)
		}
	}
	return rank.TopK(acc.Means(), n), nil
}

// normalizeSeeds returns the seeds sorted with duplicates removed.
func normalizeSeeds(seeds []int) []int {
	set := slices.Clone(seeds)
	slices.Sort(set)
	return slices.Compact(set)
}

// Dictionary resolves tag text to IDs and back.
type Dictionary interface {
	ID(tag string) (int, bool)
	Name(id int) (string, bool)
}

// Result is a related tag with its text resolved.
type Result struct {
	Tag   string
	ID    int
	Score float64
}

// Service serves related-tag queries over one association matrix and
// caches answers per (seed set, n).
type Service struct {
	matrix *sparse.Matrix
	dict   Dictionary
	cache  *lru.Cache[string, []rank.Scored]
}

// NewService creates a service. cacheSize <= 0 disables caching.
func NewService(m *sparse.Matrix, dict Dictionary, cacheSize int) (*Service, error) {
	s := &Service{matrix: m, dict: dict}
	if cacheSize > 0 {
		cache, err := lru.New[string, []rank.Scored](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create query cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Related is the cached form of the package-level Related.
func (s *Service) Related(seeds []int, n int) ([]rank.Scored, error) {
	key := cacheKey(seeds, n)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return slices.Clone(hit), nil
		}
	}

	out, err := Related(s.matrix, seeds, n)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, slices.Clone(out))
	}
	return out, nil
}

// RelatedByName resolves tag names, runs the query and names the results.
// An unknown seed name is an internalerr.ErrNotFound.
func (s *Service) RelatedByName(names []string, n int) ([]Result, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no seed tags: %w", internalerr.ErrInvalidInput)
	}
	seeds := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := s.dict.ID(name)
		if !ok {
			return nil, fmt.Errorf("tag %q: %w", name, internalerr.ErrNotFound)
		}
		seeds = append(seeds, id)
	}

	scored, err := s.Related(seeds, n)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(scored))
	for i, sc := range scored {
		name, _ := s.dict.Name(sc.ID)
		out[i] = Result{Tag: name, ID: sc.ID, Score: sc.Score}
	}
	return out, nil
}

func cacheKey(seeds []int, n int) string {
	var b strings.Builder
	for i, s := range normalizeSeeds(seeds) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s))
	}
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(n))
	return b.String()
}

// Package analytics reports on built matrices: size, shape and the strongest
// or weakest tags.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
)

// denseCells caps the matrices whose symmetry is checked on a dense copy.
const denseCells = 1 << 16

// Summary describes a matrix's size and structure.
type Summary struct {
	Rows      int
	Cols      int
	NNZ       int
	Density   float64 // NNZ / (Rows*Cols), 0 for an empty shape
	Footprint int     // approximate bytes held
	MaxRowNNZ int
	Symmetric bool
}

// Summarize inspects m.
func Summarize(m *sparse.Matrix) Summary {
	s := Summary{
		Rows:      m.Rows(),
		Cols:      m.Cols(),
		NNZ:       m.NNZ(),
		Footprint: m.Footprint(),
	}
	if cells := s.Rows * s.Cols; cells > 0 {
		s.Density = float64(s.NNZ) / float64(cells)
	}
	for i := 0; i < s.Rows; i++ {
		s.MaxRowNNZ = max(s.MaxRowNNZ, m.RowLen(i))
	}
	s.Symmetric = isSymmetric(m)
	return s
}

func isSymmetric(m *sparse.Matrix) bool {
	n := m.Rows()
	if n != m.Cols() {
		return false
	}
	if n > 0 && n*n <= denseCells {
		d := m.ToDense()
		return mat.Equal(d, d.T())
	}
	for e := range m.All() {
		v, err := m.Value(e.Col, e.Row)
		if err != nil || v != e.Value {
			return false
		}
	}
	return true
}

// Names resolves a tag ID to its text.
type Names interface {
	Name(id int) (string, bool)
}

// PairStat is one unordered tag pair and its stored value.
type PairStat struct {
	A     string
	B     string
	Value float64
}

// TopPairs returns the k largest entries above the diagonal, largest first.
// Equal values are ordered by row then column. k <= 0 returns all of them.
func TopPairs(m *sparse.Matrix, names Names, k int) []PairStat {
	var entries []sparse.Entry
	for e := range m.All() {
		if e.Col > e.Row {
			entries = append(entries, e)
		}
	}
	slices.SortStableFunc(entries, func(a, b sparse.Entry) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}

	out := make([]PairStat, len(entries))
	for i, e := range entries {
		out[i] = PairStat{A: nameOf(names, e.Row), B: nameOf(names, e.Col), Value: e.Value}
	}
	return out
}

func nameOf(names Names, id int) string {
	if name, ok := names.Name(id); ok {
		return name
	}
	return "?"
}

// Counts gives each tag's post count.
type Counts interface {
	Names
	Len() int
	Count(id int) uint32
}

// TagStat describes one tag's frequency and its strongest association.
type TagStat struct {
	Tag       string
	Count     uint32
	DFPercent float64
	IDF       float64
	MaxScore  float64 // largest stored value in the tag's row
	Degree    int     // stored entries in the tag's row
}

// TagStats computes per-tag statistics from an association matrix. Tags that
// appear in many posts but associate weakly with everything (high DFPercent,
// low MaxScore) are candidates for the ignore list.
func TagStats(assoc *sparse.Matrix, dict Counts, nPosts int) []TagStat {
	if nPosts <= 0 {
		return nil
	}
	out := make([]TagStat, 0, dict.Len())
	for id := 0; id < dict.Len(); id++ {
		count := dict.Count(id)
		st := TagStat{
			Tag:       nameOf(dict, id),
			Count:     count,
			DFPercent: 100 * float64(count) / float64(nPosts),
			IDF:       math.Log(float64(nPosts) / (1 + float64(count))),
		}
		if id < assoc.Rows() {
			for _, v := range assoc.Row(id) {
				st.MaxScore = max(st.MaxScore, v)
				st.Degree++
			}
		}
		out = append(out, st)
	}
	return out
}

// IgnoreCandidates returns tags present in at least minDFPercent of posts
// whose strongest association stays below maxScore, most frequent first.
func IgnoreCandidates(stats []TagStat, minDFPercent, maxScore float64) []TagStat {
	var out []TagStat
	for _, st := range stats {
		if st.DFPercent >= minDFPercent && st.MaxScore < maxScore {
			out = append(out, st)
		}
	}
	slices.SortStableFunc(out, func(a, b TagStat) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

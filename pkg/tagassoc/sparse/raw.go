package sparse

import (
	"fmt"
	"slices"
)

// Raw is the structural form of a Matrix: two dimensions and the three
// compressed-row arrays. Persistence layers read and write this shape;
// the stored-entry count is len(Val).
type Raw struct {
	NRows  int
	NCols  int
	RowPtr []int
	ColIdx []int
	Val    []float64
}

// Raw returns a copy of the matrix layout.
func (m *Matrix) Raw() Raw {
	return Raw{
		NRows:  m.nRows,
		NCols:  m.nCols,
		RowPtr: nonNil(slices.Clone(m.rowPtr)),
		ColIdx: nonNil(slices.Clone(m.colIdx)),
		Val:    nonNil(slices.Clone(m.val)),
	}
}

// FromRaw rebuilds a matrix from its layout, checking every invariant.
func FromRaw(r Raw) (*Matrix, error) {
	m := &Matrix{
		nRows:  r.NRows,
		nCols:  r.NCols,
		rowPtr: slices.Clone(r.RowPtr),
		colIdx: slices.Clone(r.ColIdx),
		val:    slices.Clone(r.Val),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the compressed-row invariants: row pointers start at 0,
// never decrease, stay within the entry count and end at it; columns are in range and
// strictly increasing inside each row.
func (m *Matrix) Validate() error {
	if m.nRows < 0 || m.nCols < 0 {
		return fmt.Errorf("shape %dx%d: %w", m.nRows, m.nCols, ErrBadShape)
	}
	if len(m.rowPtr) != m.nRows+1 {
		return fmt.Errorf("row pointer length %d, want %d: %w", len(m.rowPtr), m.nRows+1, ErrCorrupt)
	}
	if len(m.colIdx) != len(m.val) {
		return fmt.Errorf("%d columns for %d values: %w", len(m.colIdx), len(m.val), ErrCorrupt)
	}
	if m.rowPtr[0] != 0 || m.rowPtr[m.nRows] != len(m.val) {
		return fmt.Errorf("row pointers span [%d,%d], want [0,%d]: %w",
			m.rowPtr[0], m.rowPtr[m.nRows], len(m.val), ErrCorrupt)
	}
	for i := 0; i < m.nRows; i++ {
		start, end := m.rowPtr[i], m.rowPtr[i+1]
		if end < start {
			return fmt.Errorf("row %d: pointer decreases: %w", i, ErrCorrupt)
		}
		if end > len(m.colIdx) {
			return fmt.Errorf("row %d: pointer %d past %d entries: %w", i, end, len(m.colIdx), ErrCorrupt)
		}
		for k := start; k < end; k++ {
			c := m.colIdx[k]
			if c < 0 || c >= m.nCols {
				return fmt.Errorf("row %d: column %d outside [0,%d): %w", i, c, m.nCols, ErrCorrupt)
			}
			if k > start && m.colIdx[k-1] >= c {
				return fmt.Errorf("row %d: columns not strictly increasing at %d: %w", i, c, ErrCorrupt)
			}
		}
	}
	return nil
}

// Equal reports whether both matrices have the same shape and identical
// stored entries.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.nRows != other.nRows || m.nCols != other.nCols || len(m.val) != len(other.val) {
		return false
	}
	for i := range m.rowPtr {
		if m.rowPtr[i] != other.rowPtr[i] {
			return false
		}
	}
	for k := range m.val {
		if m.colIdx[k] != other.colIdx[k] || m.val[k] != other.val[k] {
			return false
		}
	}
	return true
}

// nonNil keeps empty layouts comparable regardless of how the matrix was
// built.
func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

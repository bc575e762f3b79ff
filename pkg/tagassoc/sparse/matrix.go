// Package sparse implements a compressed-row (CSR) matrix of float64 values.
//
// A Matrix is built once from a complete set of entries and is read-only
// afterwards. The only mutation is AddInPlace, which replaces the whole
// layout with the result of an elementwise addition.
package sparse

import (
	"cmp"
	"fmt"
	"slices"
	"unsafe"
)

// Matrix is a compressed-row sparse matrix.
//
// Row i owns colIdx[rowPtr[i]:rowPtr[i+1]] and the matching val span.
// Columns inside a row are strictly increasing and no stored value is zero
// after an addition.
type Matrix struct {
	nRows  int
	nCols  int
	rowPtr []int
	colIdx []int
	val    []float64
}

// Entry is a single stored cell.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// Key addresses a cell; it is the key type accepted by FromMap.
type Key struct {
	Row, Col int
}

// New returns an empty nRows x nCols matrix. It panics on a negative
// dimension, like make does for a negative length.
func New(nRows, nCols int) *Matrix {
	if nRows < 0 || nCols < 0 {
		panic(fmt.Sprintf("sparse: negative shape %dx%d", nRows, nCols))
	}
	return &Matrix{
		nRows:  nRows,
		nCols:  nCols,
		rowPtr: make([]int, nRows+1),
	}
}

// FromEntries builds a matrix from entries that are already unique per
// (row, col). Entries are grouped by row and each row is sorted by column.
// Duplicate columns within a row are rejected, not summed; callers must
// pre-aggregate (see FromMap).
func FromEntries(entries []Entry, nRows, nCols int) (*Matrix, error) {
	if nRows < 0 || nCols < 0 {
		return nil, fmt.Errorf("shape %dx%d: %w", nRows, nCols, ErrBadShape)
	}

	// counting sort by row
	rowPtr := make([]int, nRows+1)
	for _, e := range entries {
		if e.Row < 0 || e.Row >= nRows || e.Col < 0 || e.Col >= nCols {
			return nil, fmt.Errorf("entry (%d,%d) outside %dx%d: %w", e.Row, e.Col, nRows, nCols, ErrBadShape)
		}
		rowPtr[e.Row+1]++
	}
	for i := 0; i < nRows; i++ {
		rowPtr[i+1] += rowPtr[i]
	}

	grouped := make([]Entry, len(entries))
	next := make([]int, nRows)
	copy(next, rowPtr[:nRows])
	for _, e := range entries {
		grouped[next[e.Row]] = e
		next[e.Row]++
	}

	colIdx := make([]int, len(grouped))
	val := make([]float64, len(grouped))
	for i := 0; i < nRows; i++ {
		span := grouped[rowPtr[i]:rowPtr[i+1]]
		slices.SortFunc(span, func(a, b Entry) int { return cmp.Compare(a.Col, b.Col) })
		for j, e := range span {
			if j > 0 && span[j-1].Col == e.Col {
				return nil, fmt.Errorf("row %d column %d: %w", i, e.Col, ErrDuplicateEntry)
			}
			colIdx[rowPtr[i]+j] = e.Col
			val[rowPtr[i]+j] = e.Value
		}
	}

	return &Matrix{
		nRows:  nRows,
		nCols:  nCols,
		rowPtr: rowPtr,
		colIdx: colIdx,
		val:    val,
	}, nil
}

// FromMap builds a matrix from a hash map keyed by cell. The map already
// guarantees one value per cell.
func FromMap(cells map[Key]float64, nRows, nCols int) (*Matrix, error) {
	entries := make([]Entry, 0, len(cells))
	for k, v := range cells {
		entries = append(entries, Entry{Row: k.Row, Col: k.Col, Value: v})
	}
	return FromEntries(entries, nRows, nCols)
}

// Shape returns the row and column counts.
func (m *Matrix) Shape() (rows, cols int) {
	return m.nRows, m.nCols
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.nRows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.nCols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.val) }

// Value returns the stored value at (row, col), or 0 when the cell is not
// stored. Out-of-bounds indices return ErrOutOfRange.
func (m *Matrix) Value(row, col int) (float64, error) {
	if row < 0 || row >= m.nRows || col < 0 || col >= m.nCols {
		return 0, fmt.Errorf("value(%d,%d) in %dx%d: %w", row, col, m.nRows, m.nCols, ErrOutOfRange)
	}
	for i := m.rowPtr[row]; i < m.rowPtr[row+1]; i++ {
		if m.colIdx[i] == col {
			return m.val[i], nil
		}
	}
	return 0, nil
}

// RowLen returns the number of stored entries in row i.
func (m *Matrix) RowLen(i int) int {
	return m.rowPtr[i+1] - m.rowPtr[i]
}

// Footprint estimates the bytes held by the matrix: the three backing
// arrays plus the struct itself. Used for progress output only.
func (m *Matrix) Footprint() int {
	const word = int(unsafe.Sizeof(int(0)))
	const float = int(unsafe.Sizeof(float64(0)))
	return len(m.rowPtr)*word +
		len(m.colIdx)*word +
		len(m.val)*float +
		int(unsafe.Sizeof(*m))
}

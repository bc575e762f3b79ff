package sparse

import (
	"fmt"
	"iter"
)

// Row returns the stored (column, value) pairs of row i in ascending column
// order. The sequence can be ranged over any number of times. Row panics if
// i is out of range; use Value for a checked lookup.
func (m *Matrix) Row(i int) iter.Seq2[int, float64] {
	if i < 0 || i >= m.nRows {
		panic(fmt.Sprintf("sparse: row %d out of range [0,%d)", i, m.nRows))
	}
	cols := m.colIdx[m.rowPtr[i]:m.rowPtr[i+1]]
	vals := m.val[m.rowPtr[i]:m.rowPtr[i+1]]
	return func(yield func(int, float64) bool) {
		for k, c := range cols {
			if !yield(c, vals[k]) {
				return
			}
		}
	}
}

// All returns every stored entry in row-major, column-ascending order.
func (m *Matrix) All() iter.Seq[Entry] {
	rowPtr, colIdx, val := m.rowPtr, m.colIdx, m.val
	return func(yield func(Entry) bool) {
		row := 0
		for k := range val {
			for k >= rowPtr[row+1] {
				row++
			}
			if !yield(Entry{Row: row, Col: colIdx[k], Value: val[k]}) {
				return
			}
		}
	}
}

// Entries collects All into a slice.
func (m *Matrix) Entries() []Entry {
	out := make([]Entry, 0, len(m.val))
	for e := range m.All() {
		out = append(out, e)
	}
	return out
}

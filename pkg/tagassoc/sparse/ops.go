package sparse

import "fmt"

// Add returns m + other as a new matrix.
//
// Each row is a two-pointer merge of the ascending column runs, so the cost
// is linear in m.NNZ()+other.NNZ(). A column present on one side is copied
// through; a column on both sides is summed and kept only when the sum is
// not exactly zero.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if m.nRows != other.nRows || m.nCols != other.nCols {
		return nil, fmt.Errorf("add %dx%d + %dx%d: %w",
			m.nRows, m.nCols, other.nRows, other.nCols, ErrDimensionMismatch)
	}

	capacity := len(m.val) + len(other.val)
	rowPtr := make([]int, 1, m.nRows+1)
	colIdx := make([]int, 0, capacity)
	val := make([]float64, 0, capacity)

	for i := 0; i < m.nRows; i++ {
		l, lEnd := m.rowPtr[i], m.rowPtr[i+1]
		r, rEnd := other.rowPtr[i], other.rowPtr[i+1]

		for l < lEnd || r < rEnd {
			switch {
			case l == lEnd:
				colIdx = append(colIdx, other.colIdx[r])
				val = append(val, other.val[r])
				r++
			case r == rEnd:
				colIdx = append(colIdx, m.colIdx[l])
				val = append(val, m.val[l])
				l++
			case m.colIdx[l] < other.colIdx[r]:
				colIdx = append(colIdx, m.colIdx[l])
				val = append(val, m.val[l])
				l++
			case m.colIdx[l] > other.colIdx[r]:
				colIdx = append(colIdx, other.colIdx[r])
				val = append(val, other.val[r])
				r++
			default:
				if sum := m.val[l] + other.val[r]; sum != 0 {
					colIdx = append(colIdx, m.colIdx[l])
					val = append(val, sum)
				}
				l++
				r++
			}
		}
		rowPtr = append(rowPtr, len(val))
	}

	return &Matrix{
		nRows:  m.nRows,
		nCols:  m.nCols,
		rowPtr: rowPtr,
		colIdx: colIdx,
		val:    val,
	}, nil
}

// AddInPlace replaces m with m + other. On error m is left untouched.
func (m *Matrix) AddInPlace(other *Matrix) error {
	sum, err := m.Add(other)
	if err != nil {
		return err
	}
	*m = *sum
	return nil
}

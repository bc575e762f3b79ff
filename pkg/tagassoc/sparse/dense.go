package sparse

import "gonum.org/v1/gonum/mat"

// ToDense expands the matrix into a gonum dense matrix. Meant for small
// matrices (inspection, tests); it allocates rows*cols floats. A matrix
// with a zero dimension has no dense form and yields nil.
func (m *Matrix) ToDense() *mat.Dense {
	if m.nRows == 0 || m.nCols == 0 {
		return nil
	}
	d := mat.NewDense(m.nRows, m.nCols, nil)
	for e := range m.All() {
		d.Set(e.Row, e.Col, e.Value)
	}
	return d
}

package core

import (
	"gonum.org/v1/gonum/mat"
)

// NumericMatrix returns the numeric columns of t as a dense matrix, one row per
// table row in which every numeric cell is present. Names lists the matrix
// columns in order. The matrix is nil when fewer than one such row exists.
func (t *Table) NumericMatrix() (m *mat.Dense, names []string) {
	var cols []*Column
	for _, c := range t.cols {
		if c.Kind.Numeric() {
			cols = append(cols, c)
			names = append(names, c.Name)
		}
	}
	if len(cols) == 0 {
		return nil, names
	}

	data := make([]float64, 0, t.rows*len(cols))
	r := 0
	for i := 0; i < t.rows; i++ {
		complete := true
		for _, c := range cols {
			if !c.Valid[i] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for _, c := range cols {
			data = append(data, c.Nums[i])
		}
		r++
	}
	if r == 0 {
		return nil, names
	}
	return mat.NewDense(r, len(cols), data), names
}

package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Correlation is a Pearson correlation matrix over named columns.
type Correlation struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}

// Correlate computes pairwise Pearson correlations between the columns of m.
// Entries for constant columns are NaN in gonum and are reported as 0.
// It returns a zero Correlation when m has fewer than two rows.
func Correlate(m *mat.Dense, names []string) Correlation {
	out := Correlation{Columns: names}
	if m == nil {
		return out
	}
	r, c := m.Dims()
	if r < 2 {
		return out
	}
	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, m, nil)

	out.Matrix = make([][]float64, c)
	for i := range c {
		out.Matrix[i] = make([]float64, c)
		for j := range c {
			v := sym.At(i, j)
			if math.IsNaN(v) {
				v = 0
			}
			out.Matrix[i][j] = v
		}
	}
	return out
}

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCorrelate(t *testing.T) {
	m := mat.NewDense(4, 3, []float64{
		1, 8, 5,
		2, 6, 5,
		3, 4, 5,
		4, 2, 5,
	})
	c := Correlate(m, []string{"up", "down", "flat"})
	require.Len(t, c.Matrix, 3)
	assert.InDelta(t, 1.0, c.Matrix[0][0], 1e-9)
	assert.InDelta(t, -1.0, c.Matrix[0][1], 1e-9)
	assert.Equal(t, 0.0, c.Matrix[0][2])

	t.Run("TooFewRows", func(t *testing.T) {
		c := Correlate(mat.NewDense(1, 2, []float64{1, 2}), []string{"a", "b"})
		assert.Nil(t, c.Matrix)
		c = Correlate(nil, nil)
		assert.Nil(t, c.Matrix)
	})
}

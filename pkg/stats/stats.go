package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice. An empty slice has mean 0.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return floats.Min(x), floats.Max(x)
}

// Median returns the 50th percentile of x. Even-length slices average the
// two middle values.
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// Mode returns the most frequent value in the slice.
// Ties resolve to the smallest value so the result does not depend on input order.
func Mode(x []float64) (float64, bool) {
	if len(x) == 0 {
		return 0, false
	}
	counts := make(map[float64]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	mode, maxCount := 0.0, 0
	for v, c := range counts {
		if c > maxCount || (c == maxCount && v < mode) {
			mode, maxCount = v, c
		}
	}
	return mode, true
}

// ModeString is Mode for text values; ties resolve to the lexically smallest.
func ModeString(x []string) (string, bool) {
	if len(x) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	mode, maxCount := "", 0
	for v, c := range counts {
		if c > maxCount || (c == maxCount && v < mode) {
			mode, maxCount = v, c
		}
	}
	return mode, true
}

// Percentile returns the p-th percentile of x (0 <= p <= 100) at rank
// p/100*(n-1) of the sorted values, interpolating linearly between the two
// neighbouring ranks. This is the dataframe convention IQR fences are quoted
// in; stat.Quantile with stat.LinInterp places ranks at p*n and gives
// different quartiles on small samples.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return floats.Min(x)
	}
	if p >= 100 {
		return floats.Max(x)
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	if lower+1 >= n {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

package stats

// IQRBounds returns [Q1 - factor*IQR, Q3 + factor*IQR] for x.
func IQRBounds(x []float64, factor float64) (lower, upper float64) {
	q1 := Percentile(x, 25)
	q3 := Percentile(x, 75)
	iqr := q3 - q1
	return q1 - factor*iqr, q3 + factor*iqr
}

// Clip limits v to [lower, upper].
func Clip(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

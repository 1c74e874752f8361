package dataprep

import (
	"datacleaner/pkg/core"
	"datacleaner/pkg/stats"
)

// FillMethod selects the statistic substituted into numeric columns.
type FillMethod string

const (
	FillMean   FillMethod = "mean"
	FillMedian FillMethod = "median"
	FillMode   FillMethod = "mode"
	FillZero   FillMethod = "zero"
)

// UnknownCategory fills text columns that have no present values.
const UnknownCategory = "Unknown"

// NumericFillValue computes the substitute for missing cells of a numeric column.
// Unrecognised methods and columns without present values yield 0.
func NumericFillValue(c *core.Column, method FillMethod) float64 {
	present := c.Present()
	if len(present) == 0 {
		return 0
	}
	switch method {
	case FillMean:
		return stats.Mean(present)
	case FillMedian:
		return stats.Median(present)
	case FillMode:
		m, _ := stats.Mode(present)
		return m
	default:
		return 0
	}
}

// TextFillValue returns the most frequent present value, or UnknownCategory.
func TextFillValue(c *core.Column) string {
	if m, ok := stats.ModeString(c.PresentStrings()); ok {
		return m
	}
	return UnknownCategory
}

// ImputeConstant replaces missing numeric cells with v and returns how many were filled.
func ImputeConstant(c *core.Column, v float64) int {
	n := 0
	for i, ok := range c.Valid {
		if !ok {
			c.SetNum(i, v)
			n++
		}
	}
	if n > 0 && c.Kind == core.Int && !core.FitsInt64(v) {
		c.Kind = core.Float
	}
	return n
}

// ImputeText replaces missing text cells with s and returns how many were filled.
func ImputeText(c *core.Column, s string) int {
	n := 0
	for i, ok := range c.Valid {
		if !ok {
			c.SetStr(i, s)
			n++
		}
	}
	return n
}

// FillMissing imputes every column that has missing cells: numeric columns with
// the statistic chosen by method, text columns with their mode.
// It returns the names of the columns it filled.
func FillMissing(t *core.Table, method FillMethod) []string {
	var filled []string
	for _, c := range t.Columns() {
		if c.MissingCount() == 0 {
			continue
		}
		if c.Kind.Numeric() {
			ImputeConstant(c, NumericFillValue(c, method))
		} else {
			ImputeText(c, TextFillValue(c))
		}
		filled = append(filled, c.Name)
	}
	return filled
}

package dataprep

import (
	"datacleaner/pkg/core"
	"datacleaner/pkg/stats"
)

// duplicateMask marks the first occurrence of every distinct row.
func duplicateMask(t *core.Table) ([]bool, int) {
	seen := make(map[string]struct{}, t.Rows())
	mask := make([]bool, t.Rows())
	dups := 0
	for i := range t.Rows() {
		key := t.RowKey(i)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
		mask[i] = true
	}
	return mask, dups
}

// DuplicateCount counts rows equal to an earlier row.
func DuplicateCount(t *core.Table) int {
	_, n := duplicateMask(t)
	return n
}

// DropDuplicates removes rows equal to an earlier row, keeping the first
// occurrence and the order of survivors. It returns the number removed.
func DropDuplicates(t *core.Table) int {
	mask, n := duplicateMask(t)
	if n > 0 {
		t.KeepRows(mask)
	}
	return n
}

// MissingFraction is the share of missing cells in c. A table without rows has fraction 0.
func MissingFraction(c *core.Column, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return float64(c.MissingCount()) / float64(rows)
}

// HighMissingColumns lists columns whose missing fraction is strictly above threshold.
func HighMissingColumns(t *core.Table, threshold float64) []string {
	var out []string
	for _, c := range t.Columns() {
		if MissingFraction(c, t.Rows()) > threshold {
			out = append(out, c.Name)
		}
	}
	return out
}

// DropHighMissing drops the columns selected by HighMissingColumns and returns their names.
func DropHighMissing(t *core.Table, threshold float64) []string {
	names := HighMissingColumns(t, threshold)
	if len(names) == 0 {
		return nil
	}
	return t.DropColumns(names...)
}

// ClipOutliers clips every numeric column to its IQR fence
// [Q1 - factor*IQR, Q3 + factor*IQR]. Missing cells are ignored.
// It returns the number of clipped cells per column name.
func ClipOutliers(t *core.Table, factor float64) map[string]int {
	clipped := make(map[string]int)
	for _, c := range t.Columns() {
		if !c.Kind.Numeric() {
			continue
		}
		present := c.Present()
		if len(present) == 0 {
			continue
		}
		lo, hi := stats.IQRBounds(present, factor)
		for i, ok := range c.Valid {
			if !ok {
				continue
			}
			v := stats.Clip(c.Nums[i], lo, hi)
			if v == c.Nums[i] {
				continue
			}
			c.Nums[i] = v
			clipped[c.Name]++
			if c.Kind == core.Int && !core.FitsInt64(v) {
				c.Kind = core.Float
			}
		}
	}
	return clipped
}

package dataprep

import (
	"math"
	"strconv"
	"strings"

	"datacleaner/pkg/core"
)

// DefaultCoerceTolerance is the largest share of unparseable present values
// a text column may hold and still be converted to numeric.
const DefaultCoerceTolerance = 0.5

// ParseNumeric parses a single cell. NaN parses but is reported as a failure
// since it cannot be told apart from a missing value.
func ParseNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Coercion is the per-value outcome of parsing a text column.
type Coercion struct {
	Values  []float64
	Parsed  []bool
	Present int
	Failed  int
}

// ParseColumn parses every present cell of a text column.
func ParseColumn(c *core.Column) Coercion {
	res := Coercion{Values: make([]float64, c.Len()), Parsed: make([]bool, c.Len())}
	for i, ok := range c.Valid {
		if !ok {
			continue
		}
		res.Present++
		v, parsed := ParseNumeric(c.Strs[i])
		if !parsed {
			res.Failed++
			continue
		}
		res.Values[i] = v
		res.Parsed[i] = true
	}
	return res
}

// Accept folds the per-value results into the column decision: at least one
// value parsed and the failure share is within tolerance.
func (r Coercion) Accept(tolerance float64) bool {
	if r.Present == 0 || r.Failed == r.Present {
		return false
	}
	return float64(r.Failed)/float64(r.Present) <= tolerance
}

// Column builds the numeric form. Cells that failed to parse become missing.
func (r Coercion) Column(name string) *core.Column {
	return &core.Column{Name: name, Kind: core.Float, Nums: r.Values, Valid: r.Parsed}
}

// NarrowIntegral turns a non-empty Float column with no missing cells and only
// whole values inside the int64 range into an Int column. It reports whether
// the column changed.
func NarrowIntegral(c *core.Column) bool {
	if c.Kind != core.Float || c.Len() == 0 || c.MissingCount() > 0 {
		return false
	}
	for _, v := range c.Nums {
		if !core.FitsInt64(v) {
			return false
		}
	}
	c.Kind = core.Int
	return true
}

// ConvertTypes coerces text columns to numeric where the parse results allow
// it, then narrows integral float columns. It returns the converted and the
// narrowed column names.
func ConvertTypes(t *core.Table, tolerance float64) (converted, narrowed []string) {
	cols := t.Columns()
	for i, c := range cols {
		if c.Kind != core.Text {
			continue
		}
		res := ParseColumn(c)
		if !res.Accept(tolerance) {
			continue
		}
		cols[i] = res.Column(c.Name)
		converted = append(converted, c.Name)
	}
	for _, c := range cols {
		if NarrowIntegral(c) {
			narrowed = append(narrowed, c.Name)
		}
	}
	return converted, narrowed
}

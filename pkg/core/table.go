package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrRaggedColumns   = errors.New("columns have different lengths")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Kind is the logical type held by a column.
type Kind int

const (
	Float Kind = iota
	Int
	Text
)

// String returns the type name reported in dataset summaries.
func (k Kind) String() string {
	switch k {
	case Int:
		return "int64"
	case Text:
		return "object"
	default:
		return "float64"
	}
}

// Numeric reports whether values live in Column.Nums.
func (k Kind) Numeric() bool { return k == Float || k == Int }

// FitsInt64 reports whether v is a whole number inside the int64 range.
// 2^63 itself is representable as a float64 but not as an int64.
func FitsInt64(v float64) bool {
	return v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64
}

// Column is a named, single-typed sequence of values.
// Numeric kinds keep values in Nums, Text keeps them in Strs.
// Valid[i] is false when cell i is missing.
type Column struct {
	Name  string
	Kind  Kind
	Nums  []float64
	Strs  []string
	Valid []bool
}

// NewFloatColumn builds a Float column. NaN entries are stored as missing.
func NewFloatColumn(name string, vals []float64) *Column {
	c := &Column{Name: name, Kind: Float, Nums: make([]float64, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		c.Nums[i] = v
		c.Valid[i] = true
	}
	return c
}

// NewIntColumn builds an Int column with no missing cells.
func NewIntColumn(name string, vals []int64) *Column {
	c := &Column{Name: name, Kind: Int, Nums: make([]float64, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		c.Nums[i] = float64(v)
		c.Valid[i] = true
	}
	return c
}

// NewTextColumn builds a Text column. A nil valid marks every cell present.
func NewTextColumn(name string, vals []string, valid []bool) *Column {
	c := &Column{Name: name, Kind: Text, Strs: make([]string, len(vals)), Valid: make([]bool, len(vals))}
	copy(c.Strs, vals)
	if valid == nil {
		for i := range c.Valid {
			c.Valid[i] = true
		}
	} else {
		copy(c.Valid, valid)
	}
	for i, ok := range c.Valid {
		if !ok {
			c.Strs[i] = ""
		}
	}
	return c
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Valid) }

// MissingCount counts missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Present returns the non-missing numeric values in row order.
func (c *Column) Present() []float64 {
	out := make([]float64, 0, len(c.Nums))
	for i, ok := range c.Valid {
		if ok {
			out = append(out, c.Nums[i])
		}
	}
	return out
}

// PresentStrings returns the non-missing text values in row order.
func (c *Column) PresentStrings() []string {
	out := make([]string, 0, len(c.Strs))
	for i, ok := range c.Valid {
		if ok {
			out = append(out, c.Strs[i])
		}
	}
	return out
}

// SetNum stores v at row i and marks it present.
func (c *Column) SetNum(i int, v float64) {
	c.Nums[i] = v
	c.Valid[i] = true
}

// SetStr stores s at row i and marks it present.
func (c *Column) SetStr(i int, s string) {
	c.Strs[i] = s
	c.Valid[i] = true
}

// Format renders cell i for export. Missing cells render as "".
func (c *Column) Format(i int) string {
	if !c.Valid[i] {
		return ""
	}
	switch c.Kind {
	case Text:
		return c.Strs[i]
	case Int:
		if FitsInt64(c.Nums[i]) {
			return strconv.FormatInt(int64(c.Nums[i]), 10)
		}
		return strconv.FormatFloat(c.Nums[i], 'f', -1, 64)
	default:
		return strconv.FormatFloat(c.Nums[i], 'f', -1, 64)
	}
}

// key is the identity of cell i used for row comparison.
// Missing cells compare equal to each other. The value is length-prefixed so
// concatenated keys of different rows cannot collide.
func (c *Column) key(i int) string {
	if !c.Valid[i] {
		return "\x00"
	}
	v := c.Strs[i]
	tag := "s"
	if c.Kind != Text {
		v = strconv.FormatFloat(c.Nums[i], 'g', -1, 64)
		tag = "n"
	}
	return tag + strconv.Itoa(len(v)) + ":" + v
}

// Clone returns a deep copy of c.
func (c *Column) Clone() *Column {
	n := &Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, len(c.Valid))}
	copy(n.Valid, c.Valid)
	if c.Nums != nil {
		n.Nums = make([]float64, len(c.Nums))
		copy(n.Nums, c.Nums)
	}
	if c.Strs != nil {
		n.Strs = make([]string, len(c.Strs))
		copy(n.Strs, c.Strs)
	}
	return n
}

func (c *Column) keep(mask []bool, rows int) {
	valid := make([]bool, 0, rows)
	var nums []float64
	var strs []string
	if c.Nums != nil {
		nums = make([]float64, 0, rows)
	}
	if c.Strs != nil {
		strs = make([]string, 0, rows)
	}
	for i, k := range mask {
		if !k {
			continue
		}
		valid = append(valid, c.Valid[i])
		if nums != nil {
			nums = append(nums, c.Nums[i])
		}
		if strs != nil {
			strs = append(strs, c.Strs[i])
		}
	}
	c.Valid, c.Nums, c.Strs = valid, nums, strs
}

// Table is an ordered set of equally long columns.
// The row count is tracked separately so a table keeps its rows
// after every column has been dropped.
type Table struct {
	rows int
	cols []*Column
}

// NewTable assembles a table from columns. Columns are owned by the table afterwards.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols}
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
		}
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return t, nil
}

// MustTable is NewTable that panics on error.
func MustTable(cols ...*Column) *Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Rows() int { return t.rows }
func (t *Table) Cols() int { return len(t.cols) }

// Columns exposes the column slice for in-place transforms.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// RowKey returns a string identifying the contents of row i.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.cols {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.key(i))
	}
	return b.String()
}

// KeepRows retains the rows whose mask entry is true, in order.
func (t *Table) KeepRows(mask []bool) {
	n := 0
	for _, k := range mask {
		if k {
			n++
		}
	}
	for _, c := range t.cols {
		c.keep(mask, n)
	}
	t.rows = n
}

// DropColumns removes the named columns, preserving the order of the rest.
// It returns the names actually removed.
func (t *Table) DropColumns(names ...string) []string {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var dropped []string
	kept := t.cols[:0]
	for _, c := range t.cols {
		if _, ok := drop[c.Name]; ok {
			dropped = append(dropped, c.Name)
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(t.cols); i++ {
		t.cols[i] = nil
	}
	t.cols = kept
	return dropped
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	n := &Table{rows: t.rows, cols: make([]*Column, len(t.cols))}
	for i, c := range t.cols {
		n.cols[i] = c.Clone()
	}
	return n
}

// Records renders every row as strings, without a header.
func (t *Table) Records() [][]string {
	out := make([][]string, t.rows)
	for i := range t.rows {
		rec := make([]string, len(t.cols))
		for j, c := range t.cols {
			rec[j] = c.Format(i)
		}
		out[i] = rec
	}
	return out
}

const (
	indexBytes      = 132
	cellBytes       = 8
	stringOverhead  = 49
	missingObjBytes = 24
)

// MemoryBytes approximates the in-memory footprint of a columnar dataframe
// holding the same data: a range index, 8 bytes per numeric cell, and for
// text cells a pointer plus a boxed string object.
func (t *Table) MemoryBytes() int {
	total := indexBytes
	for _, c := range t.cols {
		if c.Kind.Numeric() {
			total += cellBytes * c.Len()
			continue
		}
		for i, ok := range c.Valid {
			total += cellBytes
			if ok {
				total += stringOverhead + len(c.Strs[i])
			} else {
				total += missingObjBytes
			}
		}
	}
	return total
}

package core

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		NewIntColumn("id", []int64{1, 2, 2}),
		NewFloatColumn("score", []float64{1.5, math.NaN(), math.NaN()}),
		NewTextColumn("name", []string{"a", "", ""}, []bool{true, false, false}),
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTable(t *testing.T) {
	t.Run("Ragged", func(t *testing.T) {
		_, err := NewTable(NewIntColumn("a", []int64{1}), NewIntColumn("b", []int64{1, 2}))
		assert.ErrorIs(t, err, ErrRaggedColumns)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		_, err := NewTable(NewIntColumn("a", []int64{1}), NewIntColumn("a", []int64{2}))
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("Empty", func(t *testing.T) {
		tbl, err := NewTable()
		require.NoError(t, err)
		assert.Equal(t, 0, tbl.Rows())
		assert.Equal(t, 0, tbl.Cols())
	})
}

func TestColumn(t *testing.T) {
	tbl := sampleTable(t)
	score, ok := tbl.Column("score")
	require.True(t, ok)

	assert.Equal(t, 2, score.MissingCount())
	assert.Equal(t, []float64{1.5}, score.Present())
	assert.Equal(t, "1.5", score.Format(0))
	assert.Equal(t, "", score.Format(1))

	id, _ := tbl.Column("id")
	assert.Equal(t, "2", id.Format(1))
	assert.Equal(t, "int64", id.Kind.String())
	assert.Equal(t, "object", Text.String())
}

func TestRowKey(t *testing.T) {
	tbl := sampleTable(t)
	assert.NotEqual(t, tbl.RowKey(0), tbl.RowKey(1))
	assert.Equal(t, tbl.RowKey(1), tbl.RowKey(2))
}

func TestRowKeyDistinguishesCellBoundaries(t *testing.T) {
	tbl := MustTable(
		NewTextColumn("a", []string{"a\x1fsb", "a", "", "x"}, []bool{true, true, false, true}),
		NewTextColumn("b", []string{"c", "b\x1fsc", "x", ""}, []bool{true, true, true, false}),
	)
	assert.NotEqual(t, tbl.RowKey(0), tbl.RowKey(1))
	assert.NotEqual(t, tbl.RowKey(2), tbl.RowKey(3))
}

func TestFitsInt64(t *testing.T) {
	assert.True(t, FitsInt64(2))
	assert.True(t, FitsInt64(-7))
	assert.True(t, FitsInt64(math.MinInt64))
	assert.False(t, FitsInt64(2.5))
	assert.False(t, FitsInt64(1<<63))
	assert.False(t, FitsInt64(1e20))
	assert.False(t, FitsInt64(math.Inf(1)))
	assert.False(t, FitsInt64(math.NaN()))
}

func TestFormatOutOfRangeInt(t *testing.T) {
	c := &Column{Name: "big", Kind: Int, Nums: []float64{1e20, 42}, Valid: []bool{true, true}}
	assert.Equal(t, "100000000000000000000", c.Format(0))
	assert.Equal(t, "42", c.Format(1))
}

func TestKeepRowsAndDropColumns(t *testing.T) {
	tbl := sampleTable(t)
	tbl.KeepRows([]bool{true, false, true})
	assert.Equal(t, 2, tbl.Rows())

	dropped := tbl.DropColumns("score", "missing")
	assert.Equal(t, []string{"score"}, dropped)
	assert.Equal(t, []string{"id", "name"}, tbl.Names())

	tbl.DropColumns("id", "name")
	assert.Equal(t, 0, tbl.Cols())
	assert.Equal(t, 2, tbl.Rows())
}

func TestClone(t *testing.T) {
	tbl := sampleTable(t)
	cp := tbl.Clone()
	if diff := cmp.Diff(tbl.Records(), cp.Records()); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	name, _ := cp.Column("name")
	name.SetStr(1, "changed")
	cp.KeepRows([]bool{true, true, false})

	orig, _ := tbl.Column("name")
	assert.False(t, orig.Valid[1])
	assert.Equal(t, 3, tbl.Rows())
}

func TestMemoryBytes(t *testing.T) {
	tbl := MustTable(
		NewIntColumn("n", []int64{1, 2}),
		NewTextColumn("s", []string{"ab", ""}, []bool{true, false}),
	)
	want := indexBytes + 2*cellBytes + (cellBytes + stringOverhead + 2) + (cellBytes + missingObjBytes)
	assert.Equal(t, want, tbl.MemoryBytes())
}

func TestNumericMatrix(t *testing.T) {
	m, names := sampleTable(t).NumericMatrix()
	assert.Equal(t, []string{"id", "score"}, names)
	require.NotNil(t, m)
	r, c := m.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 1.5}, m.RawRowView(0))

	text := MustTable(NewTextColumn("name", []string{"a"}, nil))
	m, names = text.NumericMatrix()
	assert.Nil(t, m)
	assert.Empty(t, names)
}

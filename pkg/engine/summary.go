package engine

import (
	"datacleaner/pkg/core"
	"datacleaner/pkg/dataprep"
)

// Summary is a descriptive snapshot of a table's shape and quality.
type Summary struct {
	RowCount          int               `json:"row_count"`
	ColumnCount       int               `json:"column_count"`
	ColumnNames       []string          `json:"column_names"`
	ColumnTypes       map[string]string `json:"column_types"`
	MissingCounts     map[string]int    `json:"missing_counts"`
	TotalMissing      int               `json:"total_missing"`
	DuplicateRowCount int               `json:"duplicate_row_count"`
	EstimatedMemoryKB float64           `json:"estimated_memory_kb"`
}

// Summarize computes a Summary of t. It never fails, including for empty tables.
func Summarize(t *core.Table) Summary {
	s := Summary{
		RowCount:          t.Rows(),
		ColumnCount:       t.Cols(),
		ColumnNames:       t.Names(),
		ColumnTypes:       make(map[string]string, t.Cols()),
		MissingCounts:     make(map[string]int, t.Cols()),
		DuplicateRowCount: dataprep.DuplicateCount(t),
		EstimatedMemoryKB: float64(t.MemoryBytes()) / 1024,
	}
	for _, c := range t.Columns() {
		missing := c.MissingCount()
		s.ColumnTypes[c.Name] = c.Kind.String()
		s.MissingCounts[c.Name] = missing
		s.TotalMissing += missing
	}
	return s
}

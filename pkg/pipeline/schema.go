package pipeline

import "datacleaner/pkg/engine"

// Schema describes the structure of a dataset.
type Schema struct {
	FeatureNames []string `json:"feature_names"`
	Types        []string `json:"types"` // e.g., "float64", "int64", "object"
}

// SchemaOf lists the columns of a summary with their types, in column order.
func SchemaOf(s engine.Summary) Schema {
	sc := Schema{
		FeatureNames: append([]string(nil), s.ColumnNames...),
		Types:        make([]string, len(s.ColumnNames)),
	}
	for i, name := range s.ColumnNames {
		sc.Types[i] = s.ColumnTypes[name]
	}
	return sc
}

// Package engine holds a single tabular dataset and applies cleaning
// operations to it, recording a before/after summary for each one.
//
// An Engine keeps an immutable copy of the table it was built from and a
// working copy that every operation mutates in place. Reset discards the
// working copy and the history.
//
// Engines perform no locking; callers serialise access to a given instance.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"datacleaner/pkg/core"
	"datacleaner/pkg/dataprep"
)

// ErrUnknownOperation is returned by Apply for operation names it does not know.
var ErrUnknownOperation = errors.New("invalid operation")

const (
	// DefaultMissingThreshold is the missing-value share above which
	// DropHighMissingColumns removes a column.
	DefaultMissingThreshold = 0.5
	// DefaultIQRFactor scales the interquartile range used by ClipOutliers.
	DefaultIQRFactor = 1.5
)

type FillMethod = dataprep.FillMethod

const (
	FillMean   = dataprep.FillMean
	FillMedian = dataprep.FillMedian
	FillMode   = dataprep.FillMode
	FillZero   = dataprep.FillZero
)

// ResolveFillMethod maps unrecognised methods to FillZero.
func ResolveFillMethod(m FillMethod) FillMethod {
	switch m {
	case FillMean, FillMedian, FillMode, FillZero:
		return m
	}
	return FillZero
}

// OperationResult records the effect of one cleaning operation.
type OperationResult struct {
	Operation     string  `json:"operation"`
	Description   string  `json:"description"`
	BeforeSummary Summary `json:"before_summary"`
	AfterSummary  Summary `json:"after_summary"`
}

// Engine owns an original table and the working copy operations act on.
type Engine struct {
	original *core.Table
	current  *core.Table
	history  []OperationResult
	opts     options
}

// New captures t. The engine keeps its own copies; later changes to t are not seen.
func New(t *core.Table, optFns ...Option) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		original: t.Clone(),
		current:  t.Clone(),
		opts:     opts,
	}
}

// Summary describes the current table. It is recomputed on every call.
func (e *Engine) Summary() Summary {
	return Summarize(e.current)
}

func (e *Engine) record(op, desc string, before Summary) OperationResult {
	res := OperationResult{
		Operation:     op,
		Description:   desc,
		BeforeSummary: before,
		AfterSummary:  e.Summary(),
	}
	e.history = append(e.history, res)
	e.opts.logger.LogOperation(context.Background(), op,
		before.RowCount, res.AfterSummary.RowCount,
		before.ColumnCount, res.AfterSummary.ColumnCount)
	return res
}

// RemoveDuplicates deletes rows equal to an earlier row.
func (e *Engine) RemoveDuplicates() OperationResult {
	before := e.Summary()
	removed := dataprep.DropDuplicates(e.current)
	return e.record("Remove Duplicates",
		fmt.Sprintf("Removed %d duplicate rows", removed), before)
}

// FillMissingValues imputes numeric columns with method and text columns with their mode.
// Unrecognised methods fill numeric columns with 0.
func (e *Engine) FillMissingValues(method FillMethod) OperationResult {
	before := e.Summary()
	method = ResolveFillMethod(method)
	dataprep.FillMissing(e.current, method)
	return e.record(fmt.Sprintf("Fill Missing Values (%s)", method),
		fmt.Sprintf("Filled missing values using %s method for numeric columns and mode for categorical columns", method),
		before)
}

// DropHighMissingColumns drops every column whose missing share is strictly above threshold.
func (e *Engine) DropHighMissingColumns(threshold float64) OperationResult {
	before := e.Summary()
	dropped := dataprep.DropHighMissing(e.current, threshold)
	op := fmt.Sprintf("Drop High Missing Columns (>%g%%)", threshold*100)
	if len(dropped) == 0 {
		return e.record(op, "No columns met the threshold for removal", before)
	}
	return e.record(op,
		fmt.Sprintf("Dropped %d columns: %s", len(dropped), strings.Join(dropped, ", ")), before)
}

// RemoveSpecialCharacters strips everything but letters, digits, whitespace
// and . , ! ? - from text columns.
func (e *Engine) RemoveSpecialCharacters() OperationResult {
	before := e.Summary()
	changed := dataprep.RemoveSpecialCharacters(e.current)
	return e.record("Remove Special Characters",
		fmt.Sprintf("Removed special characters from string columns while preserving alphanumeric characters, spaces, and common punctuation (%d values changed)", changed),
		before)
}

// ConvertDataTypes coerces numeric-looking text columns and narrows integral float columns.
func (e *Engine) ConvertDataTypes() OperationResult {
	before := e.Summary()
	converted, narrowed := dataprep.ConvertTypes(e.current, e.opts.coerceTolerance)
	desc := "Automatically converted data types: no columns changed"
	if len(converted)+len(narrowed) > 0 {
		desc = fmt.Sprintf("Automatically converted data types: %d text columns to numeric, %d float columns to integer",
			len(converted), len(narrowed))
	}
	return e.record("Convert Data Types", desc, before)
}

// ClipOutliers clips numeric columns to [Q1 - factor*IQR, Q3 + factor*IQR].
func (e *Engine) ClipOutliers(factor float64) OperationResult {
	before := e.Summary()
	clipped := dataprep.ClipOutliers(e.current, factor)
	total := 0
	names := make([]string, 0, len(clipped))
	for name, n := range clipped {
		total += n
		names = append(names, name)
	}
	sort.Strings(names)
	op := fmt.Sprintf("Clip Outliers (IQR x%g)", factor)
	if total == 0 {
		return e.record(op, "No values fell outside the IQR fence", before)
	}
	return e.record(op,
		fmt.Sprintf("Clipped %d values in %d columns: %s", total, len(names), strings.Join(names, ", ")), before)
}

// Reset restores the table captured by New and clears the history.
func (e *Engine) Reset() Summary {
	e.current = e.original.Clone()
	e.history = nil
	return e.Summary()
}

// CleanedTable returns an independent copy of the current table.
func (e *Engine) CleanedTable() *core.Table {
	return e.current.Clone()
}

// History returns the operations applied since New or the last Reset.
func (e *Engine) History() []OperationResult {
	out := make([]OperationResult, len(e.history))
	copy(out, e.history)
	return out
}

// Request names an operation and its parameters for Apply.
type Request struct {
	Operation string   `json:"operation"`
	Method    string   `json:"method,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Factor    *float64 `json:"factor,omitempty"`
}

// Operation names accepted by Apply.
const (
	OpRemoveDuplicates   = "remove_duplicates"
	OpFillMissing        = "fill_missing"
	OpDropHighMissing    = "drop_high_missing"
	OpRemoveSpecialChars = "remove_special_chars"
	OpConvertTypes       = "convert_types"
	OpClipOutliers       = "clip_outliers"
)

// Apply runs the operation named by req. Missing parameters take their defaults:
// mean for fill_missing, DefaultMissingThreshold and DefaultIQRFactor.
func (e *Engine) Apply(req Request) (OperationResult, error) {
	switch req.Operation {
	case OpRemoveDuplicates:
		return e.RemoveDuplicates(), nil
	case OpFillMissing:
		method := FillMethod(req.Method)
		if method == "" {
			method = FillMean
		}
		return e.FillMissingValues(method), nil
	case OpDropHighMissing:
		threshold := DefaultMissingThreshold
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		return e.DropHighMissingColumns(threshold), nil
	case OpRemoveSpecialChars:
		return e.RemoveSpecialCharacters(), nil
	case OpConvertTypes:
		return e.ConvertDataTypes(), nil
	case OpClipOutliers:
		factor := DefaultIQRFactor
		if req.Factor != nil {
			factor = *req.Factor
		}
		return e.ClipOutliers(factor), nil
	}
	return OperationResult{}, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
}

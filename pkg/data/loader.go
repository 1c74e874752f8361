package data

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"datacleaner/pkg/core"
	"datacleaner/pkg/dataprep"
)

var (
	ErrEmptyFile  = errors.New("csv has no header row")
	ErrNoFilename = errors.New("no file selected")
	ErrNotCSV     = errors.New("invalid file format, expected a .csv file")
)

// MissingTokens are the cell values read as missing.
var MissingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

func isMissing(s string) bool {
	_, ok := MissingTokens[strings.TrimSpace(s)]
	return ok
}

// CheckFilename validates an uploaded file name.
func CheckFilename(name string) error {
	if name == "" {
		return ErrNoFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return ErrNotCSV
	}
	return nil
}

// ReadCSV parses a header row followed by records into a table,
// inferring each column's kind from its cells.
func ReadCSV(r io.Reader) (*core.Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := records[0]
	rows := records[1:]
	cols := make([]*core.Column, len(header))
	cells := make([]string, len(rows))
	for j, name := range header {
		for i, rec := range rows {
			cells[i] = rec[j]
		}
		cols[j] = InferColumn(strings.TrimSpace(name), cells)
	}

	t, err := core.NewTable(cols...)
	if err != nil {
		return nil, errors.Wrap(err, "build table")
	}
	return t, nil
}

// InferColumn builds a column from raw cells. Columns whose present cells all
// parse as numbers are numeric (Int when complete and every value is a whole
// number inside the int64 range), columns with no present cells are Float,
// anything else is Text.
func InferColumn(name string, cells []string) *core.Column {
	nums := make([]float64, len(cells))
	valid := make([]bool, len(cells))
	numeric, integral, missing := true, true, 0
	for i, s := range cells {
		if isMissing(s) {
			missing++
			continue
		}
		valid[i] = true
		v, ok := dataprep.ParseNumeric(s)
		if !ok {
			numeric = false
			continue
		}
		nums[i] = v
		integral = integral && core.FitsInt64(v)
	}

	if !numeric {
		strs := make([]string, len(cells))
		for i, s := range cells {
			if valid[i] {
				strs[i] = s
			}
		}
		return core.NewTextColumn(name, strs, valid)
	}
	kind := core.Float
	if integral && missing == 0 && len(cells) > 0 {
		kind = core.Int
	}
	return &core.Column{Name: name, Kind: kind, Nums: nums, Valid: valid}
}

// WriteCSV writes the header and every row. Missing cells are written empty.
func WriteCSV(w io.Writer, t *core.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Names()); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := writer.WriteAll(t.Records()); err != nil {
		return errors.Wrap(err, "write rows")
	}
	return nil
}

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".csv.gz")
}

func checkPath(path string) error {
	if isGzip(path) || strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil
	}
	return errors.Wrapf(ErrNotCSV, "%s", path)
}

// ReadFile loads a .csv or gzip-compressed .csv.gz file.
func ReadFile(path string) (*core.Table, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	defer file.Close()

	var r io.Reader = file
	if isGzip(path) {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		defer zr.Close()
		r = zr
	}
	t, err := ReadCSV(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return t, nil
}

// WriteFile saves t as .csv, or gzip-compressed when path ends in .csv.gz.
func WriteFile(path string, t *core.Table) (err error) {
	if err := checkPath(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close output")
		}
	}()

	if !isGzip(path) {
		return WriteCSV(file, t)
	}
	zw := gzip.NewWriter(file)
	if err := WriteCSV(zw, t); err != nil {
		return err
	}
	return errors.Wrap(zw.Close(), "flush gzip")
}

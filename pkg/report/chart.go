package report

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"datacleaner/pkg/engine"
)

// ErrNoColumns is returned when a summary has no columns to chart.
var ErrNoColumns = errors.New("dataset has no columns")

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// MissingChart builds a bar chart of missing values per column.
func MissingChart(s engine.Summary) (*plot.Plot, error) {
	if len(s.ColumnNames) == 0 {
		return nil, ErrNoColumns
	}
	vals := make(plotter.Values, len(s.ColumnNames))
	for i, name := range s.ColumnNames {
		vals[i] = float64(s.MissingCounts[name])
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Missing values (%d rows)", s.RowCount)
	p.Y.Label.Text = "Missing cells"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(s.ColumnNames...)
	return p, nil
}

// SaveMissingChart writes the chart to path; the extension picks the format (png, svg, pdf).
func SaveMissingChart(s engine.Summary, path string) error {
	p, err := MissingChart(s)
	if err != nil {
		return err
	}
	return p.Save(chartWidth, chartHeight, path)
}

// WriteMissingChart renders the chart in format ("png", "svg", ...) to w.
func WriteMissingChart(w io.Writer, s engine.Summary, format string) error {
	p, err := MissingChart(s)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
)

const (
	SheetOverview     = "Overview"
	SheetNumeric      = "Numeric"
	SheetCategorical  = "Categorical"
	SheetCorrelations = "Correlations"
)

// WriteWorkbook saves the summary as a spreadsheet with one sheet per section.
// Sections that do not apply to the dataset get a header row only.
func WriteWorkbook(s *analysis.Summary, path string) error {
	if s == nil {
		return fmt.Errorf("write workbook: summary is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return err
	}
	for _, name := range []string{SheetNumeric, SheetCategorical, SheetCorrelations} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetOverview, overviewRows(s.Basic)},
		{SheetNumeric, numericRows(s.Numeric)},
		{SheetCategorical, categoricalRows(s.Categorical)},
		{SheetCorrelations, correlationRows(s.Numeric)},
	}
	for _, sh := range sheets {
		if err := writeRows(f, sh.name, sh.rows); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
	}
	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cellFloat keeps NaN and infinities out of numeric cells.
func cellFloat(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return v
}

func overviewRows(b analysis.Basic) [][]any {
	rows := [][]any{
		{"Metric", "Value"},
		{"Rows", b.Rows},
		{"Columns", b.Columns},
		{"Memory Usage (MB)", cellFloat(b.MemoryMB)},
		{},
		{"Column", "Dtype", "Missing"},
	}
	for i, d := range b.Dtypes {
		missing := 0
		if i < len(b.Missing) {
			missing = b.Missing[i].Count
		}
		rows = append(rows, []any{d.Column, d.Dtype, missing})
	}
	return rows
}

func numericRows(n *analysis.Numeric) [][]any {
	rows := [][]any{{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Skew", "Kurtosis"}}
	if n == nil {
		return rows
	}
	for i, d := range n.Describe {
		skew, kurt := math.NaN(), math.NaN()
		if i < len(n.Skew) {
			skew = n.Skew[i].Value
		}
		if i < len(n.Kurtosis) {
			kurt = n.Kurtosis[i].Value
		}
		rows = append(rows, []any{
			d.Column, d.Count,
			cellFloat(d.Mean), cellFloat(d.Std), cellFloat(d.Min),
			cellFloat(d.Q25), cellFloat(d.Q50), cellFloat(d.Q75), cellFloat(d.Max),
			cellFloat(skew), cellFloat(kurt),
		})
	}
	return rows
}

func categoricalRows(cats []analysis.Categorical) [][]any {
	rows := [][]any{{"Column", "Unique", "Nulls", "Binary", "Entropy", "Top Values"}}
	for _, c := range cats {
		var entropy any = ""
		if c.Entropy != nil {
			entropy = cellFloat(*c.Entropy)
		}
		top := make([]string, len(c.Top))
		for i, vc := range c.Top {
			top[i] = fmt.Sprintf("%s (%d)", vc.Value, vc.Count)
		}
		rows = append(rows, []any{c.Column, c.Unique, c.NullCount, c.IsBinary, entropy, strings.Join(top, ", ")})
	}
	return rows
}

func correlationRows(n *analysis.Numeric) [][]any {
	rows := [][]any{{"Column 1", "Column 2", "Correlation"}}
	if n == nil || !n.HasCorrelations {
		return rows
	}
	for _, c := range n.TopCorrelations {
		rows = append(rows, []any{c.Col1, c.Col2, cellFloat(c.R)})
	}
	return rows
}

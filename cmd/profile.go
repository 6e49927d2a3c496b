package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
	"github.com/KaramelBytes/autoreport-cli/internal/report"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	profFormat string
	profLoad   loadFlags
)

var profileCmd = &cobra.Command{
	Use:   "profile [file]",
	Short: "Print descriptive statistics for a dataset without calling a model",
	Example: `  autoreport profile sales.csv
  autoreport profile sales.csv --format json > stats.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		ds, err := profLoad.load(path)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		s, err := analysis.Compute(ds, analysis.Options{Logger: logger})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch strings.ToLower(profFormat) {
		case "json":
			stats, err := report.SerializeStats(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, stats)
			return nil
		case "table", "":
			printHeader(out, fmt.Sprintf("%s: %d rows x %d columns, %.2f MB", ds.Name, s.Basic.Rows, s.Basic.Columns, s.Basic.MemoryMB))
			renderProfile(out, s)
			return nil
		default:
			return fmt.Errorf("unsupported --format: %s (use table|json)", profFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profFormat, "format", "table", "output format: table | json")
	profLoad.register(profileCmd)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", v)
}

func renderProfile(w io.Writer, s *analysis.Summary) {
	cols := newTable(w, "Columns")
	cols.AppendHeader(table.Row{"Column", "Type", "Missing"})
	for i, d := range s.Basic.Dtypes {
		missing := 0
		if i < len(s.Basic.Missing) {
			missing = s.Basic.Missing[i].Count
		}
		cols.AppendRow(table.Row{d.Column, d.Dtype, missing})
	}
	cols.Render()

	if n := s.Numeric; n != nil {
		num := newTable(w, "Numeric")
		num.AppendHeader(table.Row{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Skew", "Kurtosis"})
		for i, d := range n.Describe {
			num.AppendRow(table.Row{
				d.Column, d.Count, fmtFloat(d.Mean), fmtFloat(d.Std), fmtFloat(d.Min),
				fmtFloat(d.Q25), fmtFloat(d.Q50), fmtFloat(d.Q75), fmtFloat(d.Max),
				fmtFloat(n.Skew[i].Value), fmtFloat(n.Kurtosis[i].Value),
			})
		}
		num.Render()
		if n.HasCorrelations && len(n.TopCorrelations) > 0 {
			corr := newTable(w, "Top correlations")
			corr.AppendHeader(table.Row{"Column 1", "Column 2", "r"})
			for _, c := range n.TopCorrelations {
				corr.AppendRow(table.Row{c.Col1, c.Col2, fmtFloat(c.R)})
			}
			corr.Render()
		}
	}

	if len(s.Categorical) > 0 {
		cat := newTable(w, "Categorical")
		cat.AppendHeader(table.Row{"Column", "Unique", "Nulls", "Binary", "Entropy", "Top values"})
		for _, c := range s.Categorical {
			entropy := "-"
			if c.Entropy != nil {
				entropy = fmtFloat(*c.Entropy)
			}
			top := make([]string, len(c.Top))
			for i, vc := range c.Top {
				top[i] = fmt.Sprintf("%s (%d)", vc.Value, vc.Count)
			}
			cat.AppendRow(table.Row{c.Column, c.Unique, c.NullCount, c.IsBinary, entropy, strings.Join(top, ", ")})
		}
		cat.Render()
	}

	if len(s.Datetime) > 0 {
		dt := newTable(w, "Datetime")
		dt.AppendHeader(table.Row{"Column", "Min", "Max", "Range (days)", "Nulls"})
		for _, d := range s.Datetime {
			from, to, span := "-", "-", "-"
			if d.Min != nil && d.Max != nil && d.RangeDays != nil {
				from, to, span = d.Min.Format("2006-01-02"), d.Max.Format("2006-01-02"), fmt.Sprint(*d.RangeDays)
			}
			dt.AppendRow(table.Row{d.Column, from, to, span, d.NullCount})
		}
		dt.Render()
	}
}

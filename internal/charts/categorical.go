package charts

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// addHBars adds a horizontal bar chart with one named bar per value, the
// first value at the bottom. Bar thickness scales with the figure height.
func addHBars(p *plot.Plot, names []string, vals []float64, height vg.Length, fill color.Color) error {
	bars, err := plotter.NewBarChart(plotter.Values(vals), height/vg.Length(2*len(vals)+2))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = fill
	p.Add(bars)
	p.NominalY(names...)
	return nil
}

func (r *Renderer) categoricalTile(c *dataset.Column) (*plot.Plot, error) {
	p := r.newPlot("Top 10: " + c.Name)
	p.X.Label.Text = "Count"
	p.Add(plotter.NewGrid())
	counts := analysis.ValueCounts(c)
	if len(counts) > r.style.TopCategories {
		counts = counts[:r.style.TopCategories]
	}
	if len(counts) == 0 {
		return p, nil
	}
	names := make([]string, len(counts))
	vals := make([]float64, len(counts))
	for i, vc := range counts {
		names[i] = vc.Value
		vals[i] = float64(vc.Count)
	}
	if err := addHBars(p, names, vals, r.style.TileHeight, r.style.BarFill); err != nil {
		return nil, err
	}
	return p, nil
}

// categorical draws only text columns; booleans are left to the profile.
func (r *Renderer) categorical(ds *dataset.Dataset, path string) (string, error) {
	cols := ds.TextColumns()
	if len(cols) == 0 {
		return "", nil
	}
	tiles := make([]*plot.Plot, len(cols))
	for i, c := range cols {
		t, err := r.categoricalTile(c)
		if err != nil {
			return "", err
		}
		tiles[i] = t
	}
	if err := r.saveGrid(tiles, path); err != nil {
		return "", err
	}
	return "Top Categories", nil
}

// Missing-data chart titles; the first is used when nothing is missing.
const (
	TitleNoMissing = "Missing Data Analysis"
	TitleMissing   = "Missing Data Percentage by Column"
)

type missingShare struct {
	column string
	pct    float64
}

// missingShares lists columns with missing values, highest percentage first.
func missingShares(ds *dataset.Dataset) []missingShare {
	rows := ds.Rows()
	var out []missingShare
	if rows == 0 {
		return out
	}
	for _, c := range ds.Columns {
		if n := c.NullCount(); n > 0 {
			out = append(out, missingShare{column: c.Name, pct: float64(n) / float64(rows) * 100})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].pct > out[j].pct })
	return out
}

func (r *Renderer) missingData(ds *dataset.Dataset, path string) (string, error) {
	shares := missingShares(ds)
	var p *plot.Plot
	if len(shares) == 0 {
		p = r.newPlot(TitleNoMissing)
		msg, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
			Labels: []string{"No Missing Data Found"},
		})
		if err != nil {
			return "", err
		}
		msg.TextStyle[0].Font.Size = r.style.TitleSize
		msg.TextStyle[0].XAlign = text.XCenter
		msg.TextStyle[0].YAlign = text.YCenter
		p.Add(msg)
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		p.HideAxes()
	} else {
		p = r.newPlot(TitleMissing)
		p.X.Label.Text = "Percentage Missing (%)"
		p.Add(plotter.NewGrid())
		names := make([]string, len(shares))
		vals := make([]float64, len(shares))
		for i, s := range shares {
			names[i] = fmt.Sprintf("%s (%.1f%%)", s.column, s.pct)
			vals[i] = s.pct
		}
		if err := addHBars(p, names, vals, r.style.MissingHeight, r.style.MissingFill); err != nil {
			return "", err
		}
	}
	if err := r.savePlot(p, r.style.MissingWidth, r.style.MissingHeight, path); err != nil {
		return "", err
	}
	return p.Title.Text, nil
}

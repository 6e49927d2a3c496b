package charts

import (
	"image/color"
	"math"

	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// finiteFloats returns the column's numeric values minus NaN and +/-Inf.
func finiteFloats(c *dataset.Column) []float64 {
	vals := c.Floats()
	out := vals[:0]
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// histogramBins splits [min,max] into n equal bins. A constant column gets a
// unit-wide range centred on its value.
func histogramBins(vals []float64, n int) []plotter.HistogramBin {
	first, last := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < first {
			first = v
		}
		if v > last {
			last = v
		}
	}
	if first == last {
		first, last = first-0.5, last+0.5
	}
	width := (last - first) / float64(n)
	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i].Min = first + width*float64(i)
		bins[i].Max = first + width*float64(i+1)
	}
	for _, v := range vals {
		i := min(max(int((v-first)/width), 0), n-1)
		bins[i].Weight++
	}
	return bins
}

func (r *Renderer) histogramTile(c *dataset.Column) *plot.Plot {
	p := r.newPlot("Distribution of " + c.Name)
	p.X.Label.Text = c.Name
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid())
	vals := finiteFloats(c)
	if len(vals) == 0 {
		return p
	}
	bins := histogramBins(vals, r.style.HistogramBins)
	p.Add(&plotter.Histogram{
		Bins:      bins,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: r.style.HistogramFill,
		LineStyle: plotter.DefaultLineStyle,
	})
	return p
}

func (r *Renderer) histograms(ds *dataset.Dataset, path string) (string, error) {
	cols := ds.NumericColumns()
	if len(cols) == 0 {
		return "", nil
	}
	tiles := make([]*plot.Plot, len(cols))
	for i, c := range cols {
		tiles[i] = r.histogramTile(c)
	}
	if err := r.saveGrid(tiles, path); err != nil {
		return "", err
	}
	return "Distributions of Numeric Variables", nil
}

func (r *Renderer) boxTile(c *dataset.Column) (*plot.Plot, error) {
	p := r.newPlot("Box Plot of " + c.Name)
	p.Y.Label.Text = c.Name
	p.Add(plotter.NewGrid())
	vals := finiteFloats(c)
	if len(vals) == 0 {
		return p, nil
	}
	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(vals))
	if err != nil {
		return nil, err
	}
	box.FillColor = color.White
	p.Add(box)
	p.NominalX("")
	return p, nil
}

func (r *Renderer) boxPlots(ds *dataset.Dataset, path string) (string, error) {
	cols := ds.NumericColumns()
	if len(cols) == 0 {
		return "", nil
	}
	tiles := make([]*plot.Plot, len(cols))
	for i, c := range cols {
		t, err := r.boxTile(c)
		if err != nil {
			return "", err
		}
		tiles[i] = t
	}
	if err := r.saveGrid(tiles, path); err != nil {
		return "", err
	}
	return "Box Plots of Numeric Variables", nil
}

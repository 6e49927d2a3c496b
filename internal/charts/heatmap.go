package charts

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
)

// corrGrid adapts a square correlation matrix to plotter.GridXYZ. Row 0 is
// drawn at the top, matching how a matrix is read.
type corrGrid struct {
	m [][]float64
}

func (g corrGrid) Dims() (c, r int) { return len(g.m), len(g.m) }

func (g corrGrid) Z(c, r int) float64 {
	v := g.m[len(g.m)-1-r][c]
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func (r *Renderer) heatmap(ds *dataset.Dataset, path string) (string, error) {
	cols := ds.NumericColumns()
	if len(cols) < 2 {
		return "", nil
	}
	m := analysis.CorrelationMatrix(cols)
	grid := corrGrid{m: m}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1

	n := len(cols)
	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for row := 0; row < n; row++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - row)})
			if v := m[row][c]; math.IsNaN(v) {
				labels = append(labels, "nan")
			} else {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			}
		}
	}
	annot, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", err
	}
	for i := range annot.TextStyle {
		annot.TextStyle[i].XAlign = text.XCenter
		annot.TextStyle[i].YAlign = text.YCenter
		annot.TextStyle[i].Font.Size = r.style.LabelSize
	}

	names := make([]string, n)
	reversed := make([]string, n)
	for i, c := range cols {
		names[i] = c.Name
		reversed[n-1-i] = c.Name
	}
	const title = "Correlation Heatmap of Numeric Variables"
	p := r.newPlot(title)
	p.Add(hm, annot)
	p.NominalX(names...)
	p.NominalY(reversed...)
	if err := r.savePlot(p, r.style.HeatmapWidth, r.style.HeatmapHeight, path); err != nil {
		return "", err
	}
	return title, nil
}

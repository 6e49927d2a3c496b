package charts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"github.com/KaramelBytes/autoreport-cli/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Kind identifies a chart type.
type Kind string

const (
	KindCorrelationHeatmap Kind = "correlation_heatmap"
	KindHistograms         Kind = "histograms"
	KindBoxPlots           Kind = "boxplots"
	KindCategorical        Kind = "categorical_distributions"
	KindMissingData        Kind = "missing_data"
	KindDtypes             Kind = "datatype_distribution"
)

// fileNames fixes the on-disk name of each chart; the numeric prefix keeps a
// directory listing in render order.
var fileNames = map[Kind]string{
	KindCorrelationHeatmap: "01_correlation_heatmap.png",
	KindHistograms:         "02_histograms.png",
	KindBoxPlots:           "03_boxplots.png",
	KindCategorical:        "04_categorical_distributions.png",
	KindMissingData:        "05_missing_data.png",
	KindDtypes:             "06_datatype_distribution.png",
}

// Artifact is one rendered chart image.
type Artifact struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// ErrNilDataset is returned when Render is called without data.
var ErrNilDataset = errors.New("dataset is nil")

// Renderer draws the exploratory chart set for a dataset.
type Renderer struct {
	style Style
	log   *slog.Logger
}

// NewRenderer returns a renderer using style; zero fields take defaults.
func NewRenderer(style Style, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{style: style.withDefaults(), log: logger}
}

// Style returns the effective style.
func (r *Renderer) Style() Style { return r.style }

// drawFunc writes one chart and returns its title, or "" when the chart does
// not apply to the dataset.
type drawFunc func(ds *dataset.Dataset, path string) (string, error)

// Render writes the charts that apply to ds into dir, creating it if needed,
// and returns them in a fixed order. The first failure aborts the run.
func (r *Renderer) Render(ds *dataset.Dataset, dir string) ([]Artifact, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	steps := []struct {
		kind Kind
		draw drawFunc
	}{
		{KindCorrelationHeatmap, r.heatmap},
		{KindHistograms, r.histograms},
		{KindBoxPlots, r.boxPlots},
		{KindCategorical, r.categorical},
		{KindMissingData, r.missingData},
		{KindDtypes, r.dtypePie},
	}
	var out []Artifact
	for _, st := range steps {
		path := filepath.Join(dir, fileNames[st.kind])
		title, err := st.draw(ds, path)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", st.kind, err)
		}
		if title == "" {
			r.log.Debug("chart skipped", "kind", st.kind)
			continue
		}
		r.log.Info("saved chart", "kind", st.kind, "path", path)
		out = append(out, Artifact{Kind: st.kind, Title: title, Path: path})
	}
	return out, nil
}

func (r *Renderer) newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = r.style.TitleSize
	return p
}

func blankPlot() *plot.Plot {
	p := plot.New()
	p.HideAxes()
	return p
}

// saveGrid lays tiles out GridColumns wide and fills the trailing cells of
// the last row with blank plots.
func (r *Renderer) saveGrid(tiles []*plot.Plot, path string) error {
	cols := min(r.style.GridColumns, len(tiles))
	rows := (len(tiles) + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for j := range grid {
		grid[j] = make([]*plot.Plot, cols)
		for i := range grid[j] {
			if k := j*cols + i; k < len(tiles) {
				grid[j][i] = tiles[k]
			} else {
				grid[j][i] = blankPlot()
			}
		}
	}
	c := vgimg.NewWith(vgimg.UseWH(r.style.GridWidth, r.style.TileHeight*vg.Length(rows)), vgimg.UseDPI(r.style.DPI))
	dc := draw.New(c)
	t := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 3,
		PadBottom: vg.Millimeter * 3,
		PadLeft:   vg.Millimeter * 3,
		PadRight:  vg.Millimeter * 3,
	}
	canvases := plot.Align(grid, t, dc)
	for j := range grid {
		for i := range grid[j] {
			grid[j][i].Draw(canvases[j][i])
		}
	}
	return writePNG(c, path)
}

func (r *Renderer) savePlot(p *plot.Plot, w, h vg.Length, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.style.DPI))
	p.Draw(draw.New(c))
	return writePNG(c, path)
}

func writePNG(c *vgimg.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

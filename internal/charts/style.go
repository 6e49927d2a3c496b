package charts

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Style holds every knob that affects how charts look. It is passed to the
// Renderer explicitly; there is no package-level theme.
type Style struct {
	DPI           int
	GridColumns   int
	HistogramBins int
	TopCategories int

	// GridWidth is the width of a subplot grid; each grid row is TileHeight tall.
	GridWidth  vg.Length
	TileHeight vg.Length

	HeatmapWidth, HeatmapHeight vg.Length
	MissingWidth, MissingHeight vg.Length
	PieWidth, PieHeight         vg.Length

	TitleSize vg.Length
	LabelSize vg.Length

	HistogramFill color.Color
	BarFill       color.Color
	MissingFill   color.Color
	// PiePalette is cycled over pie slices (hex, no leading #).
	PiePalette []string
}

// DefaultStyle returns print-quality settings.
func DefaultStyle() Style {
	return Style{
		DPI:           300,
		GridColumns:   3,
		HistogramBins: 30,
		TopCategories: 10,
		GridWidth:     15 * vg.Inch,
		TileHeight:    5 * vg.Inch,
		HeatmapWidth:  10 * vg.Inch,
		HeatmapHeight: 8 * vg.Inch,
		MissingWidth:  12 * vg.Inch,
		MissingHeight: 6 * vg.Inch,
		PieWidth:      10 * vg.Inch,
		PieHeight:     6 * vg.Inch,
		TitleSize:     vg.Points(14),
		LabelSize:     vg.Points(10),
		HistogramFill: color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}, // skyblue
		BarFill:       color.RGBA{R: 0xf0, G: 0x80, B: 0x80, A: 0xff}, // lightcoral
		MissingFill:   color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}, // orange
		PiePalette:    []string{"FF6B6B", "4ECDC4", "45B7D1", "FFA07A", "98D8C8"},
	}
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.DPI <= 0 {
		s.DPI = d.DPI
	}
	if s.GridColumns <= 0 {
		s.GridColumns = d.GridColumns
	}
	if s.HistogramBins <= 0 {
		s.HistogramBins = d.HistogramBins
	}
	if s.TopCategories <= 0 {
		s.TopCategories = d.TopCategories
	}
	if s.GridWidth <= 0 {
		s.GridWidth = d.GridWidth
	}
	if s.TileHeight <= 0 {
		s.TileHeight = d.TileHeight
	}
	if s.HeatmapWidth <= 0 || s.HeatmapHeight <= 0 {
		s.HeatmapWidth, s.HeatmapHeight = d.HeatmapWidth, d.HeatmapHeight
	}
	if s.MissingWidth <= 0 || s.MissingHeight <= 0 {
		s.MissingWidth, s.MissingHeight = d.MissingWidth, d.MissingHeight
	}
	if s.PieWidth <= 0 || s.PieHeight <= 0 {
		s.PieWidth, s.PieHeight = d.PieWidth, d.PieHeight
	}
	if s.TitleSize <= 0 {
		s.TitleSize = d.TitleSize
	}
	if s.LabelSize <= 0 {
		s.LabelSize = d.LabelSize
	}
	if s.HistogramFill == nil {
		s.HistogramFill = d.HistogramFill
	}
	if s.BarFill == nil {
		s.BarFill = d.BarFill
	}
	if s.MissingFill == nil {
		s.MissingFill = d.MissingFill
	}
	if len(s.PiePalette) == 0 {
		s.PiePalette = d.PiePalette
	}
	return s
}

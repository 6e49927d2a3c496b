package charts

import (
	"fmt"
	"os"
	"sort"

	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/vg"
)

type dtypeCount struct {
	dtype string
	count int
}

// dtypeCounts tallies storage types, most common first; ties keep column order.
func dtypeCounts(ds *dataset.Dataset) []dtypeCount {
	idx := map[string]int{}
	var out []dtypeCount
	for _, c := range ds.Columns {
		name := c.Type.String()
		if i, ok := idx[name]; ok {
			out[i].count++
			continue
		}
		idx[name] = len(out)
		out = append(out, dtypeCount{dtype: name, count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func (r *Renderer) dtypePie(ds *dataset.Dataset, path string) (string, error) {
	counts := dtypeCounts(ds)
	if len(counts) == 0 {
		return "", nil
	}
	total := len(ds.Columns)
	values := make([]chart.Value, len(counts))
	for i, dc := range counts {
		hex := r.style.PiePalette[i%len(r.style.PiePalette)]
		values[i] = chart.Value{
			Value: float64(dc.count),
			Label: fmt.Sprintf("%s %.1f%%", dc.dtype, float64(dc.count)/float64(total)*100),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(hex),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		}
	}
	dpi := float64(r.style.DPI)
	const title = "Data Type Distribution"
	pie := chart.PieChart{
		Title:  title,
		Width:  int(float64(r.style.PieWidth/vg.Inch) * dpi),
		Height: int(float64(r.style.PieHeight/vg.Inch) * dpi),
		DPI:    dpi,
		Values: values,
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := pie.Render(chart.PNG, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return title, nil
}

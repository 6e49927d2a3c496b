package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

func numericStats(cols []*dataset.Column, topK int) (*Numeric, error) {
	n := &Numeric{}
	for _, c := range cols {
		vals := c.Floats()
		d, err := describe(c.Name, vals)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", c.Name, err)
		}
		n.Describe = append(n.Describe, d)
		n.Skew = append(n.Skew, ColumnValue{Column: c.Name, Value: skewness(vals)})
		n.Kurtosis = append(n.Kurtosis, ColumnValue{Column: c.Name, Value: excessKurtosis(vals)})
	}
	if len(cols) > 1 {
		n.HasCorrelations = true
		n.TopCorrelations = topCorrelations(cols, topK)
	}
	return n, nil
}

// describe computes count, mean, sample std, min, quartiles and max.
func describe(name string, vals []float64) (Describe, error) {
	d := Describe{Column: name, Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q25, d.Q50, d.Q75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d, nil
	}
	data := stats.Float64Data(vals)
	var err error
	if d.Mean, err = stats.Mean(data); err != nil {
		return d, err
	}
	if len(vals) > 1 {
		if d.Std, err = stats.StandardDeviationSample(data); err != nil {
			return d, err
		}
	} else {
		d.Std = math.NaN()
	}
	if d.Min, err = stats.Min(data); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, err
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	d.Q25 = quantile(sorted, 0.25)
	d.Q50 = quantile(sorted, 0.50)
	d.Q75 = quantile(sorted, 0.75)
	return d, nil
}

// quantile uses linear interpolation between closest ranks (pos = q*(n-1)).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	w := pos - float64(lower)
	return sorted[lower]*(1-w) + sorted[upper]*w
}

func isConstant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// skewness is the adjusted Fisher-Pearson coefficient; NaN below three values
// and zero for a constant column.
func skewness(vals []float64) float64 {
	if len(vals) < 3 {
		return math.NaN()
	}
	if isConstant(vals) {
		return 0
	}
	return stat.Skew(vals, nil)
}

// excessKurtosis is the bias-corrected excess kurtosis; NaN below four values
// and zero for a constant column.
func excessKurtosis(vals []float64) float64 {
	if len(vals) < 4 {
		return math.NaN()
	}
	if isConstant(vals) {
		return 0
	}
	return stat.ExKurtosis(vals, nil)
}

// pearson correlates two columns over rows where both are present.
func pearson(a, b *dataset.Column) float64 {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		x, okA := a.Float(i)
		y, okB := b.Float(i)
		if okA && okB {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

// topCorrelations ranks unique pairs (i<j) by |r| descending. The sort is
// stable so ties keep first-encounter order. Undefined coefficients are dropped.
func topCorrelations(cols []*dataset.Column, k int) []Correlation {
	var pairs []Correlation
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			pairs = append(pairs, Correlation{Col1: cols[i].Name, Col2: cols[j].Name, R: pearson(cols[i], cols[j])})
		}
	}
	pairs = lo.Filter(pairs, func(p Correlation, _ int) bool { return !math.IsNaN(p.R) })
	sort.SliceStable(pairs, func(i, j int) bool { return math.Abs(pairs[i].R) > math.Abs(pairs[j].R) })
	if len(pairs) > k {
		pairs = pairs[:k]
	}
	if pairs == nil {
		pairs = []Correlation{}
	}
	return pairs
}

// CorrelationMatrix returns the pairwise-complete Pearson matrix for the given
// columns. Undefined entries, including the diagonal of a constant column, are NaN.
func CorrelationMatrix(cols []*dataset.Column) [][]float64 {
	m := make([][]float64, len(cols))
	for i := range cols {
		m[i] = make([]float64, len(cols))
	}
	for i := range cols {
		m[i][i] = pearson(cols[i], cols[i])
		for j := i + 1; j < len(cols); j++ {
			r := pearson(cols[i], cols[j])
			m[i][j], m[j][i] = r, r
		}
	}
	return m
}

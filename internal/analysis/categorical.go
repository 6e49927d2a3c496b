package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
)

// ValueCounts returns the frequency of each present value, most frequent
// first. Ties keep the order in which values first appear.
func ValueCounts(c *dataset.Column) []ValueCount {
	idx := map[string]int{}
	var out []ValueCount
	for _, v := range c.Labels() {
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func categoricalStats(c *dataset.Column, topN, entropyMax int) Categorical {
	counts := ValueCounts(c)
	cs := Categorical{
		Column:    c.Name,
		Unique:    len(counts),
		NullCount: c.NullCount(),
		IsBinary:  len(counts) == 2,
	}
	top := counts
	if len(top) > topN {
		top = top[:topN]
	}
	cs.Top = top
	if cs.Unique < entropyMax {
		h := entropy(counts)
		cs.Entropy = &h
	}
	return cs
}

// entropy is the base-2 Shannon entropy of the value distribution over
// present cells, so 0 <= H <= log2(len(counts)).
func entropy(counts []ValueCount) float64 {
	total := 0
	for _, vc := range counts {
		total += vc.Count
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, vc := range counts {
		p := float64(vc.Count) / float64(total)
		h -= p * math.Log2(p)
	}
	if h < 0 {
		return 0
	}
	return h
}

func datetimeStats(c *dataset.Column) Datetime {
	d := Datetime{Column: c.Name, NullCount: c.NullCount()}
	ts := c.Times()
	if len(ts) == 0 {
		return d
	}
	first, last := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	days := int(last.Sub(first) / (24 * time.Hour))
	d.Min, d.Max, d.RangeDays = &first, &last, &days
	return d
}

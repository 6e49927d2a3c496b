package analysis

import (
	"encoding/json"
	"time"
)

// Summary is the four-section statistics profile of a dataset. It is built
// once by Compute and not modified afterwards.
type Summary struct {
	Basic       Basic
	Numeric     *Numeric // nil when the dataset has no numeric columns
	Categorical []Categorical
	Datetime    []Datetime
}

// Basic holds shape, missing counts, storage types and memory footprint.
type Basic struct {
	Rows     int
	Columns  int
	Missing  []ColumnCount
	Dtypes   []ColumnDtype
	MemoryMB float64
}

type ColumnCount struct {
	Column string
	Count  int
}

type ColumnDtype struct {
	Column string
	Dtype  string
}

// Describe is the descriptive statistics of one numeric column.
type Describe struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

type ColumnValue struct {
	Column string
	Value  float64
}

// Correlation is a signed Pearson coefficient for an unordered column pair.
type Correlation struct {
	Col1, Col2 string
	R          float64
}

// Numeric holds the numeric section.
type Numeric struct {
	Describe []Describe
	Skew     []ColumnValue
	Kurtosis []ColumnValue
	// TopCorrelations is only emitted when HasCorrelations is set (two or more numeric columns).
	TopCorrelations []Correlation
	HasCorrelations bool
}

type ValueCount struct {
	Value string
	Count int
}

// Categorical holds the per-column profile of a text or boolean column.
type Categorical struct {
	Column    string
	Unique    int
	Top       []ValueCount
	NullCount int
	IsBinary  bool
	Entropy   *float64 // nil when the column has too many distinct values
}

// Datetime holds the range of a datetime column. Min, Max and RangeDays are
// nil when the column has no present values.
type Datetime struct {
	Column    string
	Min, Max  *time.Time
	RangeDays *int
	NullCount int
}

// MarshalJSON emits the sections in a fixed order with columns in dataset order.
func (s *Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(object{
		{"basic_stats", s.Basic.object()},
		{"numeric_stats", s.Numeric.object()},
		{"categorical_stats", categoricalObject(s.Categorical)},
		{"datetime_stats", datetimeObject(s.Datetime)},
	})
}

func (b Basic) object() object {
	missing := make(object, len(b.Missing))
	for i, m := range b.Missing {
		missing[i] = field{m.Column, m.Count}
	}
	dtypes := make(object, len(b.Dtypes))
	for i, d := range b.Dtypes {
		dtypes[i] = field{d.Column, d.Dtype}
	}
	return object{
		{"rows", b.Rows},
		{"columns", b.Columns},
		{"missing_values", missing},
		{"dtypes", dtypes},
		{"memory_usage", number(b.MemoryMB)},
	}
}

func (n *Numeric) object() object {
	if n == nil {
		return object{}
	}
	basic := make(object, len(n.Describe))
	for i, d := range n.Describe {
		basic[i] = field{d.Column, object{
			{"count", d.Count},
			{"mean", number(d.Mean)},
			{"std", number(d.Std)},
			{"min", number(d.Min)},
			{"25%", number(d.Q25)},
			{"50%", number(d.Q50)},
			{"75%", number(d.Q75)},
			{"max", number(d.Max)},
		}}
	}
	out := object{
		{"basic", basic},
		{"skew", columnValues(n.Skew)},
		{"kurtosis", columnValues(n.Kurtosis)},
	}
	if n.HasCorrelations {
		pairs := make([]object, len(n.TopCorrelations))
		for i, c := range n.TopCorrelations {
			pairs[i] = object{{"col1", c.Col1}, {"col2", c.Col2}, {"correlation", number(c.R)}}
		}
		out = append(out, field{"top_correlations", pairs})
	}
	return out
}

func columnValues(vals []ColumnValue) object {
	out := make(object, len(vals))
	for i, v := range vals {
		out[i] = field{v.Column, number(v.Value)}
	}
	return out
}

func categoricalObject(cats []Categorical) object {
	out := make(object, len(cats))
	for i, c := range cats {
		top := make(object, len(c.Top))
		for j, vc := range c.Top {
			top[j] = field{vc.Value, vc.Count}
		}
		o := object{
			{"unique_values", c.Unique},
			{"top_5_values", top},
			{"null_count", c.NullCount},
			{"is_binary", c.IsBinary},
		}
		if c.Entropy != nil {
			o = append(o, field{"entropy", number(*c.Entropy)})
		}
		out[i] = field{c.Column, o}
	}
	return out
}

func datetimeObject(dts []Datetime) object {
	out := make(object, len(dts))
	for i, d := range dts {
		o := object{}
		if d.Min != nil && d.Max != nil && d.RangeDays != nil {
			o = append(o,
				field{"min", d.Min.Format(time.RFC3339)},
				field{"max", d.Max.Format(time.RFC3339)},
				field{"range_days", *d.RangeDays},
			)
		}
		o = append(o, field{"null_count", d.NullCount})
		out[i] = field{d.Column, o}
	}
	return out
}

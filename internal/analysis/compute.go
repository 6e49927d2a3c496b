package analysis

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
)

// Options controls statistics computation.
type Options struct {
	// TopCorrelations is the number of column pairs kept, ranked by |r|.
	TopCorrelations int
	// TopValues is the number of most frequent values listed per categorical column.
	TopValues int
	// EntropyMaxUnique omits entropy for columns with this many distinct values or more.
	EntropyMaxUnique int
	// Context is caller-supplied analysis context. It is traced but does not affect the result.
	Context any
	Logger  *slog.Logger
}

// DefaultOptions returns the standard profile settings.
func DefaultOptions() Options {
	return Options{
		TopCorrelations:  5,
		TopValues:        5,
		EntropyMaxUnique: 50,
	}
}

// ErrNilDataset is returned when Compute is called without data.
var ErrNilDataset = errors.New("dataset is nil")

const bytesPerMB = 1024 * 1024

// Compute profiles the dataset. Any failure is returned as-is; there is no
// partial summary.
func Compute(ds *dataset.Dataset, opt Options) (*Summary, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	def := DefaultOptions()
	if opt.TopCorrelations <= 0 {
		opt.TopCorrelations = def.TopCorrelations
	}
	if opt.TopValues <= 0 {
		opt.TopValues = def.TopValues
	}
	if opt.EntropyMaxUnique <= 0 {
		opt.EntropyMaxUnique = def.EntropyMaxUnique
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	if opt.Context != nil {
		log.Debug("analysis context supplied", "context", opt.Context)
	}

	s := &Summary{Basic: basicStats(ds)}

	if num := ds.NumericColumns(); len(num) > 0 {
		n, err := numericStats(num, opt.TopCorrelations)
		if err != nil {
			return nil, fmt.Errorf("numeric stats: %w", err)
		}
		s.Numeric = n
	}
	for _, c := range ds.CategoricalColumns() {
		s.Categorical = append(s.Categorical, categoricalStats(c, opt.TopValues, opt.EntropyMaxUnique))
	}
	for _, c := range ds.DatetimeColumns() {
		s.Datetime = append(s.Datetime, datetimeStats(c))
	}
	log.Debug("computed statistics",
		"dataset", ds.Name,
		"rows", s.Basic.Rows,
		"columns", s.Basic.Columns,
		"categorical", len(s.Categorical),
		"datetime", len(s.Datetime),
	)
	return s, nil
}

func basicStats(ds *dataset.Dataset) Basic {
	b := Basic{
		Rows:     ds.Rows(),
		Columns:  len(ds.Columns),
		Missing:  make([]ColumnCount, len(ds.Columns)),
		Dtypes:   make([]ColumnDtype, len(ds.Columns)),
		MemoryMB: float64(ds.MemoryUsage()) / bytesPerMB,
	}
	for i, c := range ds.Columns {
		b.Missing[i] = ColumnCount{Column: c.Name, Count: c.NullCount()}
		b.Dtypes[i] = ColumnDtype{Column: c.Name, Dtype: c.Type.String()}
	}
	return b
}

package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

type parquetLoader struct{}

func (parquetLoader) CanLoad(path string) bool { return hasExt(path, ".parquet") }

func (parquetLoader) Load(path string, opt Options) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}

	reader := parquet.NewReader(pf)
	defer reader.Close()
	var records []map[string]any
	for opt.MaxRows <= 0 || len(records) < opt.MaxRows {
		row := make(map[string]any)
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet row %d: %w", len(records)+1, err)
		}
		records = append(records, row)
	}

	cols := make([]*Column, len(names))
	for i, n := range names {
		cells := make([]any, len(records))
		for r, rec := range records {
			cells[r] = normalizeParquetValue(rec[n])
		}
		cols[i] = typedColumn(n, cells)
	}
	return New(datasetName(path), cols...)
}

func normalizeParquetValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case bool, string, time.Time:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// typedColumn picks the column type from already-typed cells. Ints mixed with
// floats widen to float; any other mix falls back to string.
func typedColumn(name string, cells []any) *Column {
	var ints, floats, bools, strs, times int
	for _, v := range cells {
		switch v.(type) {
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case string:
			strs++
		case time.Time:
			times++
		}
	}
	present := ints + floats + bools + strs + times
	switch {
	case present == 0 || floats+ints == present && floats > 0:
		for i, v := range cells {
			if n, ok := v.(int64); ok {
				cells[i] = float64(n)
			}
		}
		return &Column{Name: name, Type: Float, Values: cells}
	case ints == present:
		return &Column{Name: name, Type: Int, Values: cells}
	case bools == present:
		return &Column{Name: name, Type: Bool, Values: cells}
	case times == present:
		return &Column{Name: name, Type: Datetime, Values: cells}
	}
	for i, v := range cells {
		if v != nil {
			cells[i] = FormatCell(v)
		}
	}
	return &Column{Name: name, Type: String, Values: cells}
}

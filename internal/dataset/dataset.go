package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type is the storage type of a column.
type Type int

const (
	Int Type = iota
	Float
	Bool
	String
	Datetime
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Datetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the type belongs to the numeric bucket.
func (t Type) IsNumeric() bool { return t == Int || t == Float }

// IsCategorical reports whether the type belongs to the categorical-like bucket (text and boolean).
func (t Type) IsCategorical() bool { return t == String || t == Bool }

// Column is a named, typed slice of cells. A nil cell is missing.
// Non-nil cells hold int64, float64, bool, string or time.Time according to Type.
type Column struct {
	Name   string
	Type   Type
	Values []any
}

// Len returns the number of cells, missing ones included.
func (c *Column) Len() int { return len(c.Values) }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Floats returns the non-missing cells of a numeric column as float64, in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		switch x := v.(type) {
		case int64:
			out = append(out, float64(x))
		case float64:
			out = append(out, x)
		}
	}
	return out
}

// Float returns the value at row i as float64; ok is false for missing or non-numeric cells.
func (c *Column) Float(i int) (float64, bool) {
	switch x := c.Values[i].(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Times returns the non-missing cells of a datetime column.
func (c *Column) Times() []time.Time {
	out := make([]time.Time, 0, len(c.Values))
	for _, v := range c.Values {
		if t, ok := v.(time.Time); ok {
			out = append(out, t)
		}
	}
	return out
}

// Labels returns the non-missing cells rendered as strings, in row order.
func (c *Column) Labels() []string {
	out := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		out = append(out, FormatCell(v))
	}
	return out
}

// FormatCell renders a single cell value.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// Dataset is an immutable in-memory table with named, typed columns.
type Dataset struct {
	Name    string
	Columns []*Column
}

var (
	ErrRaggedColumns   = errors.New("columns have different lengths")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// New validates the columns and returns a dataset.
func New(name string, cols ...*Column) (*Dataset, error) {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d", ErrRaggedColumns, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
		if err := checkCells(c); err != nil {
			return nil, err
		}
	}
	return &Dataset{Name: name, Columns: cols}, nil
}

func checkCells(c *Column) error {
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		ok := false
		switch c.Type {
		case Int:
			_, ok = v.(int64)
		case Float:
			_, ok = v.(float64)
		case Bool:
			_, ok = v.(bool)
		case String:
			_, ok = v.(string)
		case Datetime:
			_, ok = v.(time.Time)
		}
		if !ok {
			return fmt.Errorf("column %q row %d: %T does not match type %s", c.Name, i, v, c.Type)
		}
	}
	return nil
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (d *Dataset) filter(keep func(Type) bool) []*Column {
	var out []*Column
	for _, c := range d.Columns {
		if keep(c.Type) {
			out = append(out, c)
		}
	}
	return out
}

// NumericColumns returns int and float columns in dataset order.
func (d *Dataset) NumericColumns() []*Column { return d.filter(Type.IsNumeric) }

// CategoricalColumns returns string and bool columns in dataset order.
func (d *Dataset) CategoricalColumns() []*Column { return d.filter(Type.IsCategorical) }

// TextColumns returns string columns only.
func (d *Dataset) TextColumns() []*Column {
	return d.filter(func(t Type) bool { return t == String })
}

// DatetimeColumns returns datetime columns in dataset order.
func (d *Dataset) DatetimeColumns() []*Column {
	return d.filter(func(t Type) bool { return t == Datetime })
}

const (
	fixedCellBytes  = 8
	boolCellBytes   = 1
	stringHeaderLen = 49
)

// MemoryUsage estimates the in-memory footprint of the cell storage in bytes.
// Fixed-width types count 8 bytes per cell (1 for bool); text cells count their
// byte length plus a per-object header.
func (d *Dataset) MemoryUsage() int64 {
	var total int64
	for _, c := range d.Columns {
		switch c.Type {
		case Bool:
			total += int64(c.Len() * boolCellBytes)
		case String:
			for _, v := range c.Values {
				total += fixedCellBytes
				if s, ok := v.(string); ok {
					total += int64(stringHeaderLen + len(s))
				} else {
					total += 16
				}
			}
		default:
			total += int64(c.Len() * fixedCellBytes)
		}
	}
	return total
}

// String summarizes the shape of the dataset.
func (d *Dataset) String() string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name + ":" + c.Type.String()
	}
	return fmt.Sprintf("%s (%d rows) [%s]", d.Name, d.Rows(), strings.Join(names, ", "))
}

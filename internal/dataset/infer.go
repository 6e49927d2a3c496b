package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Options controls how raw text cells are read and typed.
type Options struct {
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffed from the header line.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, strip common separators (',' '.' space) that differ from the decimal
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {}, "None": {}, "<NA>": {},
}

// IsNA reports whether a raw cell should be treated as missing.
func IsNA(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// InferColumn types a column of raw text cells. Candidates are tried from the
// narrowest: int, bool, float, datetime, and finally string. A column with no
// present values is typed float.
func InferColumn(name string, raw []string, opt Options) *Column {
	present := 0
	for _, s := range raw {
		if !IsNA(s) {
			present++
		}
	}
	if present == 0 {
		return &Column{Name: name, Type: Float, Values: make([]any, len(raw))}
	}
	for _, t := range []Type{Int, Bool, Float, Datetime} {
		if vals, ok := convertAll(raw, t, opt); ok {
			return &Column{Name: name, Type: t, Values: vals}
		}
	}
	vals := make([]any, len(raw))
	for i, s := range raw {
		if !IsNA(s) {
			vals[i] = s
		}
	}
	return &Column{Name: name, Type: String, Values: vals}
}

func convertAll(raw []string, t Type, opt Options) ([]any, bool) {
	out := make([]any, len(raw))
	for i, s := range raw {
		if IsNA(s) {
			continue
		}
		v, ok := convert(strings.TrimSpace(s), t, opt)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func convert(s string, t Type, opt Options) (any, bool) {
	switch t {
	case Int:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	case Bool:
		switch strings.ToLower(s) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		return nil, false
	case Float:
		return parseNumeric(s, opt)
	case Datetime:
		return parseTimeMaybe(s)
	}
	return nil, false
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads a dataset from a file.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no registered loader handles the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load selects a loader based on the file name and reads the dataset.
func Load(path string, opt Options) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func hasExt(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(parquetLoader{})
}

// fromRecords builds typed columns from a header and raw text rows. Short rows
// are padded with missing cells; extra cells are ignored.
func fromRecords(name string, header []string, records [][]string, opt Options) (*Dataset, error) {
	names := headerNames(header)
	raw := make([][]string, len(names))
	for i := range raw {
		raw[i] = make([]string, len(records))
	}
	for r, rec := range records {
		for c := range names {
			if c < len(rec) {
				raw[c][r] = rec[c]
			}
		}
	}
	cols := make([]*Column, len(names))
	for i, n := range names {
		cols[i] = InferColumn(n, raw[i], opt)
	}
	return New(name, cols...)
}

// headerNames trims names, fills blanks and de-duplicates with a numeric suffix.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if k, ok := seen[n]; ok {
			seen[n] = k + 1
			n = fmt.Sprintf("%s.%d", n, k+1)
		} else {
			seen[n] = 0
		}
		out[i] = n
	}
	return out
}

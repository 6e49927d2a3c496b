package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool { return hasExt(path, ".csv", ".tsv", ".txt") }

func (csvLoader) Load(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	br := bufio.NewReader(f)
	if opt.Delimiter == 0 {
		head, _ := br.Peek(sniffBytes)
		opt.Delimiter = SniffDelimiter(head, path)
	}
	return ReadCSV(br, datasetName(path), opt)
}

// ReadCSV reads delimited text with a header row.
func ReadCSV(in io.Reader, name string, opt Options) (*Dataset, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	var records [][]string
	for len(records) < maxRows {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		records = append(records, rec)
	}
	return fromRecords(name, header, records, opt)
}

const sniffBytes = 4 << 10

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// SniffDelimiter picks the candidate that occurs most often outside quotes in
// the first line of head. Ties and misses fall back to the extension: tab for
// .tsv, comma otherwise.
func SniffDelimiter(head []byte, path string) rune {
	fallback := ','
	if hasExt(path, ".tsv") {
		fallback = '\t'
	}
	line, _, _ := strings.Cut(string(head), "\n")
	counts := make(map[rune]int, len(delimiterCandidates))
	quoted := false
	for _, r := range line {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}
	best, bestN := fallback, counts[fallback]
	for _, d := range delimiterCandidates {
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best
}

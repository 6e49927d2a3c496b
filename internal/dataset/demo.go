package dataset

import (
	"bytes"
	_ "embed"
)

//go:embed demo/happiness_2015.csv
var demoCSV []byte

// DemoName is the name of the built-in sample dataset.
const DemoName = "happiness_2015"

// Demo returns the built-in sample dataset used when no input file is given.
func Demo() (*Dataset, error) {
	return ReadCSV(bytes.NewReader(demoCSV), DemoName, DefaultOptions())
}

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInferColumnTypes(t *testing.T) {
	opt := DefaultOptions()
	cases := []struct {
		name string
		raw  []string
		want Type
	}{
		{"ints", []string{"1", "2", "", "-7"}, Int},
		{"bools", []string{"True", "false", "NA"}, Bool},
		{"floats", []string{"1.5", "2", "3e2"}, Float},
		{"locale", []string{"1.000,0", "0,5"}, Float},
		{"dates", []string{"2024-01-02", "2024-03-04", "null"}, Datetime},
		{"strings", []string{"alpha", "2", "beta"}, String},
		{"empty", []string{"", "NaN", "None"}, Float},
	}
	for _, c := range cases {
		col := InferColumn(c.name, c.raw, opt)
		assert.Equal(t, c.want, col.Type, c.name)
		assert.Len(t, col.Values, len(c.raw), c.name)
	}

	col := InferColumn("locale", []string{"1.000,0", "0,5"}, opt)
	assert.Equal(t, []float64{1000, 0.5}, col.Floats())

	ints := InferColumn("ints", []string{"1", "2", "", "-7"}, opt)
	assert.Equal(t, 1, ints.NullCount())
	assert.Nil(t, ints.Values[2])
	assert.Equal(t, int64(-7), ints.Values[3])
}

func TestReadCSVHeaderAndRaggedRows(t *testing.T) {
	in := "a,b,a,\n1,x,2,\n3\n"
	ds, err := ReadCSV(strings.NewReader(in), "t", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Rows())

	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"a", "b", "a.1", "Unnamed: 3"}, names)

	b, ok := ds.Column("b")
	require.True(t, ok)
	assert.Equal(t, String, b.Type)
	assert.Equal(t, 1, b.NullCount())
}

func TestReadCSVSemicolonDelimiter(t *testing.T) {
	in := "Group;Score\nA;10,5\nB;9,8\n"
	opt := DefaultOptions()
	opt.Delimiter = ';'
	opt.DecimalSeparator = ','
	ds, err := ReadCSV(strings.NewReader(in), "t", opt)
	require.NoError(t, err)
	score, ok := ds.Column("Score")
	require.True(t, ok)
	assert.Equal(t, Float, score.Type)
	assert.Equal(t, []float64{10.5, 9.8}, score.Floats())
}

func TestSniffDelimiter(t *testing.T) {
	cases := []struct {
		head string
		path string
		want rune
	}{
		{"a,b,c\n1,2,3\n", "x.csv", ','},
		{"a;b;c\n1,5;2,0;3\n", "x.csv", ';'},
		{"a|b\n1|2\n", "x.txt", '|'},
		{"a\tb\n1\t2\n", "x.csv", '\t'},
		{"\"x;y\",b\n", "x.csv", ','},
		{"single\n1\n", "x.tsv", '\t'},
		{"", "x.csv", ','},
	}
	for _, c := range cases {
		assert.Equal(t, string(c.want), string(SniffDelimiter([]byte(c.head), c.path)), c.head)
	}

	p := filepath.Join(t.TempDir(), "euro.csv")
	require.NoError(t, os.WriteFile(p, []byte("city;score\nBern;1,5\nGenf;2,5\n"), 0o644))
	ds, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, ds.Columns, 2)
	assert.Equal(t, []float64{1.5, 2.5}, ds.Columns[1].Floats())
}

func TestReadCSVMaxRows(t *testing.T) {
	in := "n\n1\n2\n3\n4\n"
	opt := DefaultOptions()
	opt.MaxRows = 2
	ds, err := ReadCSV(strings.NewReader(in), "t", opt)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rows())
}

func TestLoadDispatchAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(p, []byte("x\ty\n1\t2\n"), 0o644))
	ds, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "data", ds.Name)
	assert.Len(t, ds.NumericColumns(), 2)

	other := filepath.Join(dir, "notes.docx")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	_, err = Load(other, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLoadXLSX(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "book.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"city", "temp", "ok"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Oslo", 3.5, "true"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Rome", 18, "false"}))
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	ds, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Rows())
	city, _ := ds.Column("city")
	temp, _ := ds.Column("temp")
	okCol, _ := ds.Column("ok")
	assert.Equal(t, String, city.Type)
	assert.Equal(t, Float, temp.Type)
	assert.Equal(t, Bool, okCol.Type)

	opt := DefaultOptions()
	opt.SheetIndex = 3
	_, err = Load(p, opt)
	assert.Error(t, err)
}

type parquetRow struct {
	Name  string  `parquet:"name"`
	Score float64 `parquet:"score"`
	Count int64   `parquet:"count"`
}

func TestLoadParquet(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "rows.parquet")
	file, err := os.Create(p)
	require.NoError(t, err)
	w := parquet.NewGenericWriter[parquetRow](file)
	_, err = w.Write([]parquetRow{{"a", 1.5, 3}, {"b", 2.5, 4}, {"c", 0.5, 5}})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, file.Close())

	ds, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())
	score, ok := ds.Column("score")
	require.True(t, ok)
	assert.Equal(t, Float, score.Type)
	assert.InDelta(t, 4.5, sum(score.Floats()), 1e-9)
	count, ok := ds.Column("count")
	require.True(t, ok)
	assert.Equal(t, Int, count.Type)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestNewValidatesColumns(t *testing.T) {
	a := &Column{Name: "a", Type: Int, Values: []any{int64(1), int64(2)}}
	b := &Column{Name: "b", Type: Int, Values: []any{int64(1)}}
	_, err := New("x", a, b)
	assert.ErrorIs(t, err, ErrRaggedColumns)

	_, err = New("x", a, a)
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	bad := &Column{Name: "c", Type: Int, Values: []any{"1", nil}}
	_, err = New("x", a, bad)
	assert.Error(t, err)
}

func TestDemoDataset(t *testing.T) {
	ds, err := Demo()
	require.NoError(t, err)
	assert.Equal(t, DemoName, ds.Name)
	assert.Equal(t, 23, ds.Rows())
	country, _ := ds.Column("Country")
	rank, _ := ds.Column("Happiness Rank")
	score, _ := ds.Column("Happiness Score")
	assert.Equal(t, String, country.Type)
	assert.Equal(t, Int, rank.Type)
	assert.Equal(t, Float, score.Type)
	assert.Len(t, ds.NumericColumns(), 10)
	assert.Len(t, ds.TextColumns(), 2)
	assert.Greater(t, ds.MemoryUsage(), int64(0))
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "2024-05-06T07:08:09Z", FormatCell(ts))
	assert.Equal(t, "true", FormatCell(true))
	assert.Equal(t, "42", FormatCell(int64(42)))
	assert.Equal(t, "", FormatCell(nil))
}

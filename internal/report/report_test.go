package report

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
	"github.com/KaramelBytes/autoreport-cli/internal/charts"
	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
)

func testSummary(t *testing.T) *analysis.Summary {
	t.Helper()
	ds, err := dataset.New("sample",
		&dataset.Column{Name: "score", Type: dataset.Float, Values: []any{1.0, 2.0, 3.0, nil}},
		&dataset.Column{Name: "rank", Type: dataset.Float, Values: []any{4.0, 3.0, 2.0, 1.0}},
		&dataset.Column{Name: "region", Type: dataset.String, Values: []any{"north", "south", "north", "east"}},
	)
	require.NoError(t, err)
	s, err := analysis.Compute(ds, analysis.DefaultOptions())
	require.NoError(t, err)
	return s
}

func quietAssembler() *Assembler {
	return NewAssembler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		img.Set(x, 3, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestComposeTextRoundTrip(t *testing.T) {
	stats, err := SerializeStats(testSummary(t))
	require.NoError(t, err)

	for _, n := range []ai.Narrative{
		{Text: "Scores rise as rank falls.\n\nConsider more data.", Present: true, Attempts: 1},
		{Present: false, Attempts: 2, Err: errors.New("boom")},
	} {
		text := ComposeText(stats, n)
		assert.True(t, strings.HasPrefix(text, "=== BASIC STATISTICS ===\n"+stats))
		got, ok := ParseInterpretation(text)
		require.True(t, ok)
		assert.Equal(t, NarrativeText(n), got)
	}
}

func TestNarrativeTextNullMarker(t *testing.T) {
	assert.Equal(t, NullNarrative, NarrativeText(ai.Narrative{}))
	assert.Equal(t, "", NarrativeText(ai.Narrative{Present: true}))
}

func TestParseInterpretationNullMarkerIsAmbiguous(t *testing.T) {
	absent, ok := ParseInterpretation(ComposeText("{}", ai.Narrative{}))
	require.True(t, ok)
	literal, ok := ParseInterpretation(ComposeText("{}", ai.Narrative{Text: NullNarrative, Present: true}))
	require.True(t, ok)
	assert.Equal(t, absent, literal)
}

func TestParseInterpretationRejectsForeignText(t *testing.T) {
	_, ok := ParseInterpretation("hello")
	assert.False(t, ok)
	_, ok = ParseInterpretation("=== BASIC STATISTICS ===\n{}")
	assert.False(t, ok)
}

func TestSerializeStats(t *testing.T) {
	stats, err := SerializeStats(testSummary(t))
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stats)))
	assert.True(t, strings.HasPrefix(stats, "{\n  \"basic_stats\": {"))

	_, err = SerializeStats(nil)
	assert.Error(t, err)
}

func TestStampFormat(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.Local)
	id := uuid.MustParse("9f1c2d3e-4b5a-6978-8a9b-0c1d2e3f4a5b")
	assert.Equal(t, "20240309_140507_123456_9f1c2d3e", Stamp(at, id))

	re := regexp.MustCompile(`^\d{8}_\d{6}_\d{6}_[0-9a-f]{8}$`)
	a, b := Stamp(at, uuid.New()), Stamp(at, uuid.New())
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)

	p := PathsFor("out", a)
	assert.Equal(t, filepath.Join("out", "report_"+a+".pdf"), p.PDF)
	assert.Equal(t, filepath.Join("out", "analysis_"+a+".txt"), p.Text)
	assert.Equal(t, filepath.Join("out", "run_"+a+".json"), p.Manifest)
}

func TestHeadline(t *testing.T) {
	stats, err := SerializeStats(testSummary(t))
	require.NoError(t, err)
	lines, ok := headline(stats)
	require.True(t, ok)
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	assert.Equal(t, "Dataset Overview:", texts[0])
	assert.True(t, lines[0].bold)
	assert.Equal(t, "Rows: 4", texts[1])
	assert.Equal(t, "Columns: 3", texts[2])
	assert.True(t, strings.HasPrefix(texts[3], "Memory Usage: "))
	assert.True(t, strings.HasSuffix(texts[3], " MB"))
	assert.Contains(t, texts, "Descriptive statistics available for numeric columns")

	_, ok = headline("not json")
	assert.False(t, ok)
	_, ok = headline(`{"other": 1}`)
	assert.False(t, ok)
}

func TestAssembleWritesPDFAndText(t *testing.T) {
	dir := t.TempDir()
	chartDir := t.TempDir()
	good := filepath.Join(chartDir, "01_correlation_heatmap.png")
	writeTestPNG(t, good)
	bogus := filepath.Join(chartDir, "02_histograms.png")
	require.NoError(t, os.WriteFile(bogus, []byte("not an image"), 0o644))

	stats, err := SerializeStats(testSummary(t))
	require.NoError(t, err)
	in := Input{
		Stats:     stats,
		Narrative: ai.Narrative{Text: "Regional scores differ; Z\u00fcrich leads.", Present: true, Attempts: 1},
		Charts: []charts.Artifact{
			{Kind: charts.KindCorrelationHeatmap, Path: good},
			{Kind: charts.KindHistograms, Path: bogus},
			{Kind: charts.KindBoxPlots, Path: filepath.Join(chartDir, "missing.png")},
		},
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	res, err := quietAssembler().Assemble(in, filepath.Join(dir, "reports"), "stamp")
	require.NoError(t, err)

	pdf, err := os.ReadFile(res.PDFPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
	assert.Equal(t, "report_stamp.pdf", filepath.Base(res.PDFPath))

	txt, err := os.ReadFile(res.TextPath)
	require.NoError(t, err)
	assert.Equal(t, ComposeText(stats, in.Narrative), string(txt))
	assert.Equal(t, res.Text, string(txt))
}

func TestAssembleFallsBackToRawStats(t *testing.T) {
	res, err := quietAssembler().Assemble(Input{Stats: "plain statistics text"}, t.TempDir(), "raw")
	require.NoError(t, err)
	txt, err := os.ReadFile(res.TextPath)
	require.NoError(t, err)
	got, ok := ParseInterpretation(string(txt))
	require.True(t, ok)
	assert.Equal(t, NullNarrative, got)
}

func TestAssembleWarnsAboutCharsOutsideCP1252(t *testing.T) {
	var logs strings.Builder
	a := NewAssembler(slog.New(slog.NewTextHandler(&logs, nil)))
	in := Input{Stats: "{}", Narrative: ai.Narrative{Text: "Trend \u2192 up; \u6771\u4eac leads, Z\u00fcrich flat.", Present: true}}
	res, err := a.Assemble(in, t.TempDir(), "glyphs")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "report_font")
	assert.Contains(t, logs.String(), "count=3")

	txt, err := os.ReadFile(res.TextPath)
	require.NoError(t, err)
	assert.Contains(t, string(txt), in.Narrative.Text)
}

func TestUnencodable(t *testing.T) {
	tr := fpdf.New("P", "in", "Letter", "").UnicodeTranslatorFromDescriptor("")
	assert.Equal(t, 0, unencodable(tr, "plain ascii. Caf\u00e9 \u20ac5"))
	assert.Equal(t, 2, unencodable(tr, "\u2192 \U0001F600"))
}

func TestAssembleMissingFontFails(t *testing.T) {
	a := quietAssembler()
	a.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	dir := t.TempDir()
	_, err := a.Assemble(Input{Stats: "{}"}, dir, "font")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load font")
	pdfs, _ := filepath.Glob(filepath.Join(dir, "*.pdf"))
	assert.Empty(t, pdfs)
}

func TestAssembleFailsWhenDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := quietAssembler().Assemble(Input{Stats: "{}"}, file, "x")
	assert.Error(t, err)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	require.NoError(t, WriteWorkbook(testSummary(t), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetOverview, SheetNumeric, SheetCategorical, SheetCorrelations}, f.GetSheetList())

	rows, err := f.GetRows(SheetOverview)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rows", "4"}, rows[1])
	assert.Equal(t, []string{"Columns", "3"}, rows[2])

	num, err := f.GetRows(SheetNumeric)
	require.NoError(t, err)
	require.Len(t, num, 3)
	assert.Equal(t, "score", num[1][0])
	assert.Equal(t, "3", num[1][1])

	corr, err := f.GetRows(SheetCorrelations)
	require.NoError(t, err)
	require.Len(t, corr, 2)
	assert.Equal(t, []string{"score", "rank"}, corr[1][:2])

	assert.Error(t, WriteWorkbook(nil, path))
}

func TestManifestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_x.json")
	m := &Manifest{
		RunID:            uuid.NewString(),
		Stamp:            "x",
		Dataset:          "sample",
		Rows:             4,
		Columns:          3,
		CreatedAt:        time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Provider:         "openai",
		Model:            "gpt-4o-mini",
		NarrativePresent: true,
		PDF:              "report_x.pdf",
		Charts:           []charts.Artifact{{Kind: charts.KindDtypes, Title: "Data Types", Path: "06.png"}},
	}
	require.NoError(t, m.Save(path))
	got, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

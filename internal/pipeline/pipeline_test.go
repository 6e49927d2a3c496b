package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/KaramelBytes/autoreport-cli/internal/charts"
	"github.com/KaramelBytes/autoreport-cli/internal/config"
	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"github.com/KaramelBytes/autoreport-cli/internal/report"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func smallStyle() charts.Style {
	s := charts.DefaultStyle()
	s.DPI = 24
	s.GridWidth = 6 * vg.Inch
	s.TileHeight = 2 * vg.Inch
	s.HeatmapWidth, s.HeatmapHeight = 4*vg.Inch, 3*vg.Inch
	s.MissingWidth, s.MissingHeight = 4*vg.Inch, 2*vg.Inch
	s.PieWidth, s.PieHeight = 4*vg.Inch, 3*vg.Inch
	return s
}

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("sales",
		&dataset.Column{Name: "units", Type: dataset.Int, Values: []any{int64(3), int64(5), nil, int64(8), int64(2)}},
		&dataset.Column{Name: "price", Type: dataset.Float, Values: []any{9.5, 7.25, 8.0, 6.0, 11.0}},
		&dataset.Column{Name: "region", Type: dataset.String, Values: []any{"east", "west", "east", nil, "north"}},
	)
	require.NoError(t, err)
	return ds
}

func chatBody(text string) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": text}}},
	})
	return b
}

type recorder struct {
	prompts []string
	reply   func(n int) (any, error)
}

func (r *recorder) Complete(_ context.Context, prompt string) (any, error) {
	r.prompts = append(r.prompts, prompt)
	return r.reply(len(r.prompts))
}

func newPipeline(t *testing.T, tr ai.Transport, mut func(*Options)) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		ReportsDir: filepath.Join(dir, "reports"),
		Style:      smallStyle(),
		Logger:     quiet,
	}
	if mut != nil {
		mut(&opts)
	}
	s := ai.NewSummarizer(tr, ai.SummarizerConfig{Provider: ai.ProviderHTTP, Model: "test-model", Logger: quiet})
	return New(s, opts), dir
}

func TestRunProducesAllArtifacts(t *testing.T) {
	tr := &recorder{reply: func(int) (any, error) { return chatBody("Prices fall as units rise."), nil }}
	p, dir := newPipeline(t, tr, func(o *Options) { o.ExportXLSX = true })

	out, err := p.WithSource("sales.csv").Run(context.Background(), sample(t))
	require.NoError(t, err)

	assert.True(t, out.Narrative.Present)
	assert.Equal(t, 1, out.Narrative.Attempts)
	assert.FileExists(t, out.PDFPath)
	assert.FileExists(t, out.TextPath)
	assert.FileExists(t, out.WorkbookPath)
	assert.FileExists(t, out.ManifestPath)
	assert.Equal(t, filepath.Join(dir, "reports"), filepath.Dir(out.PDFPath))

	got, ok := report.ParseInterpretation(out.Text)
	require.True(t, ok)
	assert.Equal(t, "Prices fall as units rise.", got)

	require.NotEmpty(t, out.Charts)
	for _, a := range out.Charts {
		assert.Equal(t, filepath.Join(dir, "reports", "visualizations"), filepath.Dir(a.Path))
		assert.FileExists(t, a.Path)
	}

	m, err := report.LoadManifest(out.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, out.RunID, m.RunID)
	assert.Equal(t, "sales.csv", m.Source)
	assert.Equal(t, "sales", m.Dataset)
	assert.Equal(t, 5, m.Rows)
	assert.Equal(t, 3, m.Columns)
	assert.Equal(t, ai.ProviderHTTP, m.Provider)
	assert.Equal(t, "test-model", m.Model)
	assert.True(t, m.NarrativePresent)
	assert.Empty(t, m.NarrativeError)
	assert.Len(t, m.Charts, len(out.Charts))

	require.Len(t, tr.prompts, 1)
	assert.Contains(t, tr.prompts[0], "\"basic_stats\"")
}

func TestRunWithoutNarrativeStillReports(t *testing.T) {
	tr := &recorder{reply: func(int) (any, error) { return nil, errors.New("upstream down") }}
	p, _ := newPipeline(t, tr, nil)

	out, err := p.Run(context.Background(), sample(t))
	require.NoError(t, err)
	assert.False(t, out.Narrative.Present)
	assert.Equal(t, ai.DefaultMaxAttempts, out.Narrative.Attempts)
	assert.Len(t, tr.prompts, ai.DefaultMaxAttempts)
	assert.True(t, strings.HasSuffix(out.Text, report.NullNarrative))
	assert.FileExists(t, out.PDFPath)
	assert.Empty(t, out.WorkbookPath)

	m, err := report.LoadManifest(out.ManifestPath)
	require.NoError(t, err)
	assert.False(t, m.NarrativePresent)
	assert.Equal(t, "upstream down", m.NarrativeError)
}

func TestRunForwardsContextToPrompt(t *testing.T) {
	tr := &recorder{reply: func(int) (any, error) { return chatBody("ok"), nil }}
	p, _ := newPipeline(t, tr, nil)
	pctx := ai.PromptContext{{Key: "audience", Value: "finance team"}}

	_, err := p.WithContext(pctx).Run(context.Background(), sample(t))
	require.NoError(t, err)
	require.Len(t, tr.prompts, 1)
	assert.Contains(t, tr.prompts[0], "Additional Analysis Context:\n- audience: finance team")
}

func TestRunStampsAreUniqueForSameInstant(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	tr := &recorder{reply: func(int) (any, error) { return chatBody("ok"), nil }}
	p, _ := newPipeline(t, tr, func(o *Options) { o.Now = func() time.Time { return fixed } })

	a, err := p.Run(context.Background(), sample(t))
	require.NoError(t, err)
	b, err := p.Run(context.Background(), sample(t))
	require.NoError(t, err)
	assert.NotEqual(t, a.PDFPath, b.PDFPath)
	assert.NotEqual(t, a.TextPath, b.TextPath)
	assert.True(t, strings.HasPrefix(a.Stamp, "20240501_120000_000000_"))
}

func TestRunFailsWhenChartsDirIsFile(t *testing.T) {
	tr := &recorder{reply: func(int) (any, error) { return chatBody("ok"), nil }}
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	p, dir := newPipeline(t, tr, func(o *Options) { o.ChartsDir = blocker })

	_, err := p.Run(context.Background(), sample(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render charts")
	_, statErr := os.Stat(filepath.Join(dir, "reports"))
	assert.True(t, os.IsNotExist(statErr), "no report is written after a chart failure")
}

func TestRunNilDataset(t *testing.T) {
	p, _ := newPipeline(t, &recorder{}, nil)
	_, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilDataset)
}

func TestFromConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := &config.Global{Provider: ai.ProviderOpenAI, Model: "gpt-4o-mini", MaxTokens: 100, MaxAttempts: 2, HTTPTimeoutSec: 5, ReportsDir: t.TempDir(), ChartDPI: 72}
	_, err := FromConfig(c, quiet)
	assert.ErrorIs(t, err, ai.ErrMissingAPIKey)

	c.Provider = ai.ProviderOllama
	p, err := FromConfig(c, quiet)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.ReportsDir, "visualizations"), p.opts.ChartsDir)
	assert.Equal(t, 72, p.renderer.Style().DPI)
}

func TestFromConfigMergesCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"custom/model": {"Provider": "ollama", "ContextTokens": 2048}}`), 0o644))
	c := &config.Global{Provider: ai.ProviderOllama, Model: "custom/model", MaxTokens: 100, MaxAttempts: 1, HTTPTimeoutSec: 5, ReportsDir: t.TempDir(), ChartDPI: 72, ModelsCatalog: path}
	_, err := FromConfig(c, quiet)
	require.NoError(t, err)
	mi, ok := ai.LookupModel("custom/model")
	require.True(t, ok)
	assert.Equal(t, 2048, mi.ContextTokens)
}

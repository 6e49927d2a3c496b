// Package pipeline runs one dataset through statistics, narrative, charts and
// report assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
	"github.com/KaramelBytes/autoreport-cli/internal/charts"
	"github.com/KaramelBytes/autoreport-cli/internal/config"
	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"github.com/KaramelBytes/autoreport-cli/internal/report"
)

// Options controls where a run writes and what it adds to the report.
type Options struct {
	ReportsDir string
	ChartsDir  string
	// Context is free-form analysis context forwarded to the statistics step
	// and appended to the prompt.
	Context    any
	Source     string
	ExportXLSX bool
	Style      charts.Style
	Title      string
	Author     string
	// Font is an optional TTF file used for all PDF text.
	Font   string
	Logger     *slog.Logger
	// Now overrides the clock used for stamps and the report date.
	Now func() time.Time
}

// Output describes everything one run produced.
type Output struct {
	RunID        string
	Stamp        string
	PDFPath      string
	TextPath     string
	Text         string
	WorkbookPath string
	ManifestPath string
	Charts       []charts.Artifact
	Summary      *analysis.Summary
	Narrative    ai.Narrative
}

// Pipeline holds the components shared across runs.
type Pipeline struct {
	summarizer *ai.Summarizer
	renderer   *charts.Renderer
	assembler  *report.Assembler
	opts       Options
	log        *slog.Logger
}

var ErrNilDataset = errors.New("dataset is nil")

// New wires a pipeline around an existing summarizer.
func New(s *ai.Summarizer, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReportsDir == "" {
		opts.ReportsDir = "reports"
	}
	asm := report.NewAssembler(opts.Logger)
	if opts.Title != "" {
		asm.Title = opts.Title
	}
	if opts.Author != "" {
		asm.Author = opts.Author
	}
	asm.FontPath = opts.Font
	return &Pipeline{
		summarizer: s,
		renderer:   charts.NewRenderer(opts.Style, opts.Logger),
		assembler:  asm,
		opts:       opts,
		log:        opts.Logger,
	}
}

// FromConfig validates credentials and builds a pipeline from global
// configuration. A hosted provider without an API key fails here with
// ai.ErrMissingAPIKey.
func FromConfig(c *config.Global, logger *slog.Logger) (*Pipeline, error) {
	if c == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if c.ModelsCatalog != "" {
		m, err := ai.LoadCatalogFromJSON(c.ModelsCatalog)
		if err != nil {
			return nil, fmt.Errorf("load models catalog: %w", err)
		}
		ai.MergeCatalog(m)
	}
	s, err := ai.Build(ai.SummarizerConfig{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Host:        c.OllamaHost,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		MaxAttempts: c.MaxAttempts,
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	style := charts.DefaultStyle()
	style.DPI = c.ChartDPI
	return New(s, Options{
		ReportsDir: c.ReportsDir,
		ChartsDir:  c.ResolvedChartsDir(),
		ExportXLSX: c.ExportXLSX,
		Style:      style,
		Title:      c.ReportTitle,
		Author:     c.ReportAuthor,
		Font:       c.ReportFont,
		Logger:     logger,
	}), nil
}

// WithContext returns a copy of the pipeline that forwards ctx as analysis
// context.
func (p *Pipeline) WithContext(ctx any) *Pipeline {
	cp := *p
	cp.opts.Context = ctx
	return &cp
}

// WithSource returns a copy of the pipeline that records src in the manifest.
func (p *Pipeline) WithSource(src string) *Pipeline {
	cp := *p
	cp.opts.Source = src
	return &cp
}

// Run executes the full report flow for ds. Statistics, chart and file
// errors abort the run; a narrative failure only leaves the interpretation
// empty.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset) (*Output, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	start := p.opts.Now()
	runID := uuid.New()
	stamp := report.Stamp(start, runID)
	log := p.log.With("run_id", runID.String(), "dataset", ds.Name)
	log.Info("starting report run", "rows", ds.Rows(), "columns", len(ds.Columns))

	summary, err := analysis.Compute(ds, analysis.Options{Context: p.opts.Context, Logger: log})
	if err != nil {
		log.Error("statistics failed", "error", err)
		return nil, fmt.Errorf("compute statistics: %w", err)
	}
	stats, err := report.SerializeStats(summary)
	if err != nil {
		log.Error("serialize failed", "error", err)
		return nil, err
	}

	narrative := p.summarizer.Summarize(ctx, stats, p.opts.Context)
	if !narrative.Present {
		log.Warn("continuing without narrative", "attempts", narrative.Attempts, "error", narrative.Err)
	}

	chartsDir := p.opts.ChartsDir
	if chartsDir == "" {
		chartsDir = filepath.Join(p.opts.ReportsDir, "visualizations")
	}
	arts, err := p.renderer.Render(ds, chartsDir)
	if err != nil {
		log.Error("chart rendering failed", "error", err)
		return nil, fmt.Errorf("render charts: %w", err)
	}

	res, err := p.assembler.Assemble(report.Input{
		Stats:       stats,
		Narrative:   narrative,
		Charts:      arts,
		GeneratedAt: start,
	}, p.opts.ReportsDir, stamp)
	if err != nil {
		log.Error("report assembly failed", "error", err)
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	paths := report.PathsFor(p.opts.ReportsDir, stamp)
	out := &Output{
		RunID:     runID.String(),
		Stamp:     stamp,
		PDFPath:   res.PDFPath,
		TextPath:  res.TextPath,
		Text:      res.Text,
		Charts:    arts,
		Summary:   summary,
		Narrative: narrative,
	}
	if p.opts.ExportXLSX {
		if err := report.WriteWorkbook(summary, paths.Workbook); err != nil {
			log.Error("workbook export failed", "error", err)
			return nil, fmt.Errorf("write workbook: %w", err)
		}
		out.WorkbookPath = paths.Workbook
		log.Info("saved workbook", "path", paths.Workbook)
	}

	m := &report.Manifest{
		RunID:             out.RunID,
		Stamp:             stamp,
		Source:            p.opts.Source,
		Dataset:           ds.Name,
		Rows:              summary.Basic.Rows,
		Columns:           summary.Basic.Columns,
		CreatedAt:         start,
		Duration:          p.opts.Now().Sub(start).Round(time.Millisecond).String(),
		Provider:          p.summarizer.Provider(),
		Model:             p.summarizer.Model(),
		NarrativePresent:  narrative.Present,
		NarrativeAttempts: narrative.Attempts,
		PDF:               out.PDFPath,
		Text:              out.TextPath,
		Workbook:          out.WorkbookPath,
		Charts:            arts,
	}
	if narrative.Err != nil {
		m.NarrativeError = narrative.Err.Error()
	}
	if err := m.Save(paths.Manifest); err != nil {
		log.Error("manifest write failed", "error", err)
		return nil, err
	}
	out.ManifestPath = paths.Manifest
	log.Info("report run complete", "pdf", out.PDFPath, "charts", len(arts), "narrative", narrative.Present)
	return out, nil
}

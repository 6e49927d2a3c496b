package report

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/KaramelBytes/autoreport-cli/internal/charts"
	"github.com/KaramelBytes/autoreport-cli/internal/utils"
)

const (
	DefaultTitle = "Comprehensive Data Analysis Report"

	pageMargin  = 0.75
	imageWidth  = 6.0
	imageHeight = 4.0
	lineHeight  = 0.22
)

var (
	titleColor   = [3]int{0x1f, 0x47, 0x88}
	headingColor = [3]int{0x2e, 0x5c, 0x8a}
)

// Input is everything one report is assembled from.
type Input struct {
	Stats       string
	Narrative   ai.Narrative
	Charts      []charts.Artifact
	GeneratedAt time.Time
}

// Result names the files Assemble wrote.
type Result struct {
	PDFPath  string
	TextPath string
	Text     string
}

// Assembler writes the PDF and plain-text reports.
type Assembler struct {
	Title  string
	Author string
	// FontPath is a TrueType file embedded for all PDF text. When empty the
	// core Helvetica font is used and text is mapped to cp1252.
	FontPath string
	log      *slog.Logger
}

func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{Title: DefaultTitle, Author: "autoreport", log: logger}
}

// Assemble writes report_<stamp>.pdf and analysis_<stamp>.txt into dir.
// Charts that cannot be embedded are replaced by a note; any other PDF error
// fails the run.
func (a *Assembler) Assemble(in Input, dir, stamp string) (*Result, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	paths := PathsFor(dir, stamp)
	if err := a.writePDF(in, paths.PDF); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	a.log.Info("saved pdf report", "path", paths.PDF)

	text := ComposeText(in.Stats, in.Narrative)
	if err := os.WriteFile(paths.Text, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("write text report: %w", err)
	}
	a.log.Info("saved text report", "path", paths.Text)
	return &Result{PDFPath: paths.PDF, TextPath: paths.Text, Text: text}, nil
}

const embeddedFamily = "ReportFont"

type pdfDoc struct {
	*fpdf.Fpdf
	family string
	tr     func(string) string
}

// setupFont registers FontPath when set, otherwise falls back to Helvetica
// and warns about narrative characters cp1252 cannot hold.
func (a *Assembler) setupFont(pdf *fpdf.Fpdf, narrative string) (pdfDoc, error) {
	if a.FontPath == "" {
		doc := pdfDoc{Fpdf: pdf, family: "Helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
		if n := unencodable(doc.tr, narrative); n > 0 {
			a.log.Warn("narrative has characters the built-in PDF font cannot show; set report_font to a TTF file", "count", n)
		}
		return doc, nil
	}
	b, err := os.ReadFile(a.FontPath)
	if err != nil {
		return pdfDoc{}, fmt.Errorf("load font: %w", err)
	}
	for _, style := range []string{"", "B", "I"} {
		pdf.AddUTF8FontFromBytes(embeddedFamily, style, b)
	}
	if err := pdf.Error(); err != nil {
		return pdfDoc{}, fmt.Errorf("load font %s: %w", a.FontPath, err)
	}
	return pdfDoc{Fpdf: pdf, family: embeddedFamily, tr: func(s string) string { return s }}, nil
}

// unencodable counts the non-ASCII runes of s that tr cannot map.
func unencodable(tr func(string) string, s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x80 && tr(string(r)) == "." {
			n++
		}
	}
	return n
}

func (a *Assembler) writePDF(in Input, path string) error {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(a.Title, true)
	pdf.SetAuthor(a.Author, true)
	doc, err := a.setupFont(pdf, NarrativeText(in.Narrative))
	if err != nil {
		return err
	}

	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	doc.AddPage()
	doc.SetFont(doc.family, "B", 24)
	doc.SetTextColor(titleColor[0], titleColor[1], titleColor[2])
	doc.MultiCell(0, 0.4, doc.tr(a.Title), "", "C", false)
	doc.Ln(0.25)
	doc.SetFont(doc.family, "", 10)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, lineHeight, "Generated on: "+generated.Format("January 02, 2006 at 15:04:05"), "", 1, "L", false, 0, "")
	doc.Ln(0.2)

	doc.heading("Basic Statistics")
	if lines, ok := headline(in.Stats); ok {
		for _, l := range lines {
			doc.line(l)
		}
	} else {
		doc.body(in.Stats)
	}
	doc.Ln(0.2)

	doc.heading("AI-Generated Insights")
	doc.body(NarrativeText(in.Narrative))

	if len(in.Charts) > 0 {
		doc.AddPage()
		doc.heading("Data Visualizations")
		for _, art := range in.Charts {
			if err := doc.embedImage(art); err != nil {
				a.log.Warn("chart not embedded", "path", art.Path, "error", err)
				doc.unavailable(art.Path)
			}
		}
	}
	return doc.OutputFileAndClose(path)
}

func (d pdfDoc) heading(s string) {
	d.SetFont(d.family, "B", 14)
	d.SetTextColor(headingColor[0], headingColor[1], headingColor[2])
	d.CellFormat(0, 0.3, d.tr(s), "", 1, "L", false, 0, "")
	d.Ln(0.05)
	d.SetTextColor(0, 0, 0)
}

func (d pdfDoc) body(s string) {
	d.SetFont(d.family, "", 11)
	d.MultiCell(0, lineHeight, d.tr(s), "", "J", false)
}

func (d pdfDoc) line(l headlineLine) {
	style := ""
	if l.bold {
		style = "B"
	}
	d.SetFont(d.family, style, 11)
	d.MultiCell(0, lineHeight, d.tr(l.text), "", "L", false)
}

func (d pdfDoc) unavailable(path string) {
	d.SetFont(d.family, "I", 10)
	d.MultiCell(0, lineHeight, d.tr("Visualization unavailable: "+filepath.Base(path)), "", "L", false)
	d.Ln(0.1)
}

var errUnsupportedImage = errors.New("unsupported image format")

// embedImage validates the file before handing it to fpdf, since a failed
// registration latches an error on the document.
func (d pdfDoc) embedImage(art charts.Artifact) error {
	f, err := os.Open(art.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	opt := fpdf.ImageOptions{}
	switch format {
	case "png":
		opt.ImageType = "PNG"
	case "jpeg":
		opt.ImageType = "JPG"
	default:
		return fmt.Errorf("%w: %s", errUnsupportedImage, format)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	d.RegisterImageOptionsReader(art.Path, opt, f)
	if d.Err() {
		err := d.Error()
		d.ClearError()
		return err
	}

	_, pageH := d.GetPageSize()
	if d.GetY()+imageHeight > pageH-pageMargin {
		d.AddPage()
	}
	pageW, _ := d.GetPageSize()
	y := d.GetY()
	d.ImageOptions(art.Path, (pageW-imageWidth)/2, y, imageWidth, imageHeight, false, opt, 0, "")
	d.SetY(y + imageHeight + 0.2)
	return nil
}

type headlineLine struct {
	text string
	bold bool
}

// headline projects the serialized stats onto the overview shown in the PDF.
// It reports false when stats is not a JSON document with a basic section.
func headline(stats string) ([]headlineLine, bool) {
	if !gjson.Valid(stats) {
		return nil, false
	}
	doc := gjson.Parse(stats)
	basic := doc.Get("basic_stats")
	if !basic.IsObject() {
		return nil, false
	}
	orNA := func(r gjson.Result) string {
		if !r.Exists() {
			return "N/A"
		}
		return r.String()
	}
	mem := "N/A"
	if m := basic.Get("memory_usage"); m.Type == gjson.Number {
		mem = fmt.Sprintf("%.2f MB", m.Float())
	}
	lines := []headlineLine{
		{text: "Dataset Overview:", bold: true},
		{text: "Rows: " + orNA(basic.Get("rows"))},
		{text: "Columns: " + orNA(basic.Get("columns"))},
		{text: "Memory Usage: " + mem},
	}
	if num := doc.Get("numeric_stats"); num.Exists() {
		lines = append(lines, headlineLine{text: "Numeric Columns Summary:", bold: true})
		if num.Get("basic").Exists() {
			lines = append(lines, headlineLine{text: "Descriptive statistics available for numeric columns"})
		}
	}
	return lines, true
}

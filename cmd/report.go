package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/autoreport-cli/internal/config"
	"github.com/KaramelBytes/autoreport-cli/internal/dataset"
	"github.com/KaramelBytes/autoreport-cli/internal/pipeline"
	"github.com/KaramelBytes/autoreport-cli/internal/report"
	"github.com/KaramelBytes/autoreport-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repContext       []string
	repXLSX          bool
	repDryRun        bool
	repPrintPrompt   bool
	repPreviewTokens int
	repLoad          loadFlags
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Build a PDF and text report for a dataset (built-in sample if no file)",
	Example: `  autoreport report
  autoreport report sales.csv --context audience="finance team" --context period=Q3
  autoreport report survey.xlsx --sheet-name Responses --xlsx
  autoreport report metrics.parquet --provider ollama --model llama3.1:8b-instruct
  autoreport report sales.csv --dry-run --print-prompt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runReport(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addReportFlags(reportCmd)
	repLoad.register(reportCmd)
}

// addReportFlags registers the report options on cmd. The root command gets
// them too so a bare `autoreport` accepts them.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&repContext, "context", nil, "analysis context as key=value (repeatable, kept in order)")
	cmd.Flags().BoolVar(&repXLSX, "xlsx", false, "also export the statistics as an .xlsx workbook (overrides config)")
	cmd.Flags().BoolVar(&repDryRun, "dry-run", false, "compute statistics and show the prompt size without calling the model or writing files")
	cmd.Flags().BoolVar(&repPrintPrompt, "print-prompt", false, "with --dry-run, print the prompt")
	cmd.Flags().IntVar(&repPreviewTokens, "preview-tokens", 400, "with --print-prompt, truncate the prompt preview to about this many tokens (0 = full)")
}

// parseContext turns key=value items into an ordered prompt context.
func parseContext(items []string) (ai.PromptContext, error) {
	var pc ai.PromptContext
	for _, it := range items {
		k, v, ok := strings.Cut(it, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --context %q (want key=value)", it)
		}
		pc = append(pc, ai.Entry{Key: k, Value: strings.TrimSpace(v)})
	}
	return pc, nil
}

func runReport(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	c, err := requireConfig()
	if err != nil {
		return err
	}
	pctx, err := parseContext(repContext)
	if err != nil {
		return err
	}
	var analysisCtx any
	if len(pctx) > 0 {
		analysisCtx = pctx
	}
	ds, err := repLoad.load(path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if repDryRun {
		return dryRun(out, c, ds, analysisCtx)
	}
	if cmd.Flags().Changed("xlsx") {
		c.ExportXLSX = repXLSX
	}

	p, err := pipeline.FromConfig(c, logger)
	if err != nil {
		return err
	}
	src := path
	if src == "" {
		src = "builtin:" + dataset.DemoName
	}
	fmt.Fprintf(out, "⚙ Building report for %s (%d rows, %d columns) with %s/%s ...\n", ds.Name, ds.Rows(), len(ds.Columns), c.Provider, c.Model)
	res, err := p.WithContext(analysisCtx).WithSource(src).Run(cmd.Context(), ds)
	if err != nil {
		return err
	}
	printRun(out, res)
	return nil
}

func printRun(w io.Writer, res *pipeline.Output) {
	if !res.Narrative.Present {
		printWarn(w, "no narrative generated after %d attempt(s): %v", res.Narrative.Attempts, res.Narrative.Err)
	}
	printOK(w, "PDF report: %s", res.PDFPath)
	printOK(w, "Text report: %s", res.TextPath)
	if len(res.Charts) > 0 {
		printOK(w, "Charts: %d in %s", len(res.Charts), filepath.Dir(res.Charts[0].Path))
	}
	if res.WorkbookPath != "" {
		printOK(w, "Workbook: %s", res.WorkbookPath)
	}
	fmt.Fprintln(w, dimStyle.Render("Run "+res.RunID+" recorded in "+res.ManifestPath))
}

func dryRun(w io.Writer, c *cfgpkg.Global, ds *dataset.Dataset, pctx any) error {
	summary, err := analysis.Compute(ds, analysis.Options{Context: pctx, Logger: logger})
	if err != nil {
		return err
	}
	stats, err := report.SerializeStats(summary)
	if err != nil {
		return err
	}
	prompt := ai.BuildPrompt(stats, pctx)
	tokens := utils.CountTokens(prompt)
	parts := make([]string, 0, 2)
	for _, s := range utils.TokenBreakdown(map[string]string{"stats": stats, "instructions": strings.Replace(prompt, stats, "", 1)}) {
		parts = append(parts, fmt.Sprintf("%s≈%d", s.Label, s.Tokens))
	}
	fmt.Fprintf(w, "Dataset: %s (%d rows, %d columns)\n", ds.Name, ds.Rows(), len(ds.Columns))
	fmt.Fprintf(w, "Tokens: prompt≈%d (%s), max completion %d\n", tokens, strings.Join(parts, ", "), c.MaxTokens)
	if mi, ok := ai.LookupModel(c.Model); ok {
		if tokens+c.MaxTokens > mi.ContextTokens {
			printWarn(w, "prompt + max-tokens (≈%d) exceeds the %s context window (%d)", tokens+c.MaxTokens, mi.Name, mi.ContextTokens)
		}
		if cost, ok := ai.EstimateCostUSD(c.Model, tokens, c.MaxTokens); ok && cost > 0 {
			fmt.Fprintf(w, "Estimated max cost: ~$%.4f (in %.4f/out %.4f per 1K tokens)\n", cost, mi.InputPerK, mi.OutputPerK)
		}
	}
	fmt.Fprintln(w, "--dry-run: no API call will be made and no files written.")
	if repPrintPrompt {
		preview := prompt
		if repPreviewTokens > 0 {
			preview = utils.TruncateToTokenLimit(prompt, repPreviewTokens)
		}
		fmt.Fprintln(w, "\n-- prompt --")
		fmt.Fprintln(w, preview)
		if preview != prompt {
			fmt.Fprintln(w, dimStyle.Render("... (truncated)"))
		}
	}
	return nil
}

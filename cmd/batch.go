package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/autoreport-cli/internal/pipeline"
	"github.com/KaramelBytes/autoreport-cli/internal/utils"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	batchKeepGoing bool
	batchQuiet     bool
	batchLoad      loadFlags
)

// dataExts are the file extensions batch picks up from directory arguments.
var dataExts = []string{".csv", ".tsv", ".xlsx", ".parquet"}

var batchCmd = &cobra.Command{
	Use:   "batch <files|dirs|globs...>",
	Short: "Build a report for each dataset, one after another",
	Example: `  autoreport batch data/*.csv
  autoreport batch ./exports --keep-going`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("xlsx") {
			c.ExportXLSX = repXLSX
		}
		pctx, err := parseContext(repContext)
		if err != nil {
			return err
		}
		var analysisCtx any
		if len(pctx) > 0 {
			analysisCtx = pctx
		}
		p, err := pipeline.FromConfig(c, logger)
		if err != nil {
			return err
		}
		p = p.WithContext(analysisCtx)

		out := cmd.OutOrStdout()
		total := len(files)
		var failed []string
		for i, path := range files {
			if !batchQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			err := func() error {
				ds, err := batchLoad.load(path)
				if err != nil {
					return fmt.Errorf("load dataset: %w", err)
				}
				res, err := p.WithSource(path).Run(cmd.Context(), ds)
				if err != nil {
					return err
				}
				if !batchQuiet {
					printRun(out, res)
				}
				return nil
			}()
			if err != nil {
				if !batchKeepGoing {
					return fmt.Errorf("%s: %w", path, err)
				}
				printWarn(out, "%s: %v", path, err)
				failed = append(failed, path)
			}
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d datasets failed", len(failed), total)
		}
		if !batchQuiet {
			printOK(out, "Built %d report(s)", total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringArrayVar(&repContext, "context", nil, "analysis context as key=value applied to every dataset (repeatable)")
	batchCmd.Flags().BoolVar(&repXLSX, "xlsx", false, "also export each dataset's statistics as an .xlsx workbook (overrides config)")
	batchCmd.Flags().BoolVar(&batchKeepGoing, "keep-going", false, "continue with the next dataset when one fails")
	batchCmd.Flags().BoolVar(&batchQuiet, "quiet", false, "suppress progress and non-essential output")
	batchLoad.register(batchCmd)
}

// expandInputs resolves globs and directories to a sorted, de-duplicated file list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			found, err := utils.FindFiles(arg, dataExts)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", arg, err)
			}
			files = append(files, found...)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		files = append(files, matches...)
	}
	files = lo.Uniq(files)
	sort.Strings(files)
	return files, nil
}

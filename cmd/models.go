package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	modelsJSON     bool
	modelsProvider string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the model catalog and supported providers",
	Long: `Inspect the model catalog and supported providers.
Extra models can be merged from a JSON file with: autoreport config set models_catalog <file>`,
	Example: `  autoreport models show
  autoreport models show --only-provider ollama
  autoreport models show --json`,
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var rows []ai.ModelInfo
		for _, mi := range ai.Catalog() {
			if modelsProvider == "" || strings.EqualFold(mi.Provider, modelsProvider) {
				rows = append(rows, mi)
			}
		}
		if modelsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		t := newTable(out, "Models")
		t.AppendHeader(table.Row{"Provider", "Model", "Context", "In $/1K", "Out $/1K"})
		for _, mi := range rows {
			t.AppendRow(table.Row{mi.Provider, mi.Name, mi.ContextTokens, fmt.Sprintf("%.5f", mi.InputPerK), fmt.Sprintf("%.5f", mi.OutputPerK)})
		}
		t.Render()
		fmt.Fprintln(out, dimStyle.Render("Providers: "+strings.Join(ai.Providers(), ", ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)

	modelsShowCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
	modelsShowCmd.Flags().StringVar(&modelsProvider, "only-provider", "", "only show models for this provider")
}

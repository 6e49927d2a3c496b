package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/autoreport-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set AutoReport configuration",
	Example: `  autoreport config show
  autoreport config set provider ollama
  autoreport config set api_key sk-...
  autoreport config set export_xlsx true`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "api_key: %s\n", mask(c.APIKey))
		fmt.Fprintf(out, "provider: %s\n", c.Provider)
		fmt.Fprintf(out, "model: %s\n", c.Model)
		if c.BaseURL != "" {
			fmt.Fprintf(out, "base_url: %s\n", c.BaseURL)
		}
		fmt.Fprintf(out, "max_tokens: %d\n", c.MaxTokens)
		fmt.Fprintf(out, "temperature: %.3f\n", c.Temperature)
		fmt.Fprintf(out, "max_attempts: %d\n", c.MaxAttempts)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		if c.Provider == "ollama" {
			fmt.Fprintf(out, "ollama_host: %s\n", c.OllamaHost)
		}
		if c.ModelsCatalog != "" {
			fmt.Fprintf(out, "models_catalog: %s\n", c.ModelsCatalog)
		}
		fmt.Fprintf(out, "reports_dir: %s\n", c.ReportsDir)
		fmt.Fprintf(out, "charts_dir: %s\n", c.ResolvedChartsDir())
		fmt.Fprintf(out, "chart_dpi: %d\n", c.ChartDPI)
		fmt.Fprintf(out, "report_title: %s\n", c.ReportTitle)
		fmt.Fprintf(out, "report_author: %s\n", c.ReportAuthor)
		if c.ReportFont != "" {
			fmt.Fprintf(out, "report_font: %s\n", c.ReportFont)
		}
		fmt.Fprintf(out, "export_xlsx: %t\n", c.ExportXLSX)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from file + defaults only; flag overrides must not leak into the saved file
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg, cfgErr = c, nil
		printOK(cmd.OutOrStdout(), "Saved %s", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}

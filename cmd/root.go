package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/KaramelBytes/autoreport-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides applied on top of the loaded configuration
	flagHTTPTimeoutSec int
	flagReportsDir     string
	flagProvider       string
	flagModel          string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

var rootCmd = &cobra.Command{
	Use:   "autoreport",
	Short: "AutoReport CLI: profile a dataset and turn it into an AI-annotated PDF report",
	Long: `AutoReport loads a CSV, TSV, XLSX or Parquet dataset, computes descriptive statistics,
asks a language model to interpret them, renders a set of exploratory charts and
assembles everything into a PDF and a plain-text report.

Run without arguments to build a report for the built-in sample dataset.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, "")
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error:"), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.autoreport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagReportsDir, "reports-dir", "", "directory for reports (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "model provider: openai | openrouter | http | ollama (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name (overrides config)")

	addReportFlags(rootCmd)
}

func loadConfig() {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, cfgErr = cfgpkg.Load(cfgFile)
	if cfgErr != nil {
		// Non-fatal here: commands that need config report it themselves
		logger.Debug("config load failed", "error", cfgErr)
		return
	}

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("reports-dir") && flagReportsDir != "" {
		cfg.ReportsDir = flagReportsDir
	}
	if f.Changed("provider") && flagProvider != "" {
		if err := cfg.Set("provider", flagProvider); err != nil {
			cfgErr = err
			return
		}
	}
	if f.Changed("model") && flagModel != "" {
		cfg.Model = flagModel
	}
}

// requireConfig returns the loaded configuration or the error that prevented it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"oneof=openai openrouter http ollama"`
	Model       string  `mapstructure:"model" yaml:"model" validate:"required"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxAttempts int     `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1,lte=10"`
	// Models catalog overrides, merged into the built-in catalog at startup
	ModelsCatalog string `mapstructure:"models_catalog" yaml:"models_catalog"`

	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec" validate:"gt=0"`
	OllamaHost     string `mapstructure:"ollama_host" yaml:"ollama_host" validate:"omitempty,url"`

	ReportsDir   string `mapstructure:"reports_dir" yaml:"reports_dir" validate:"required"`
	ChartsDir    string `mapstructure:"charts_dir" yaml:"charts_dir"`
	ChartDPI     int    `mapstructure:"chart_dpi" yaml:"chart_dpi" validate:"gte=36,lte=1200"`
	ReportTitle  string `mapstructure:"report_title" yaml:"report_title"`
	ReportAuthor string `mapstructure:"report_author" yaml:"report_author"`
	// TrueType font for the PDF; without it text is limited to cp1252
	ReportFont string `mapstructure:"report_font" yaml:"report_font" validate:"omitempty,file"`
	ExportXLSX   bool   `mapstructure:"export_xlsx" yaml:"export_xlsx"`
}

const (
	dirName  = ".autoreport"
	fileName = "config.yaml"
)

var validate = validator.New()

// DefaultPath returns ~/.autoreport/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.autoreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.autoreport/config.yaml) > defaults.
// A .env file in the working directory is loaded into the environment first
// without overriding variables that are already set.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("AUTOREPORT")
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", "AUTOREPORT_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("model", "AUTOREPORT_MODEL", "OPENAI_MODEL")

	v.SetDefault("api_key", "")
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-3.5-turbo")
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 1500)
	v.SetDefault("temperature", 0.0)
	v.SetDefault("max_attempts", 2)
	v.SetDefault("models_catalog", "")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("charts_dir", "")
	v.SetDefault("chart_dpi", 300)
	v.SetDefault("report_title", "Comprehensive Data Analysis Report")
	v.SetDefault("report_author", "autoreport")
	v.SetDefault("report_font", "")
	v.SetDefault("export_xlsx", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Provider = normalizeProvider(c.Provider)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolvedChartsDir returns charts_dir, defaulting to <reports_dir>/visualizations.
func (c *Global) ResolvedChartsDir() string {
	if c.ChartsDir != "" {
		return c.ChartsDir
	}
	return filepath.Join(c.ReportsDir, "visualizations")
}

func normalizeProvider(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", "openai":
		return "openai"
	case "openrouter":
		return "openrouter"
	case "http":
		return "http"
	case "ollama", "local":
		return "ollama"
	}
	return p
}

// setters maps each settable key to a parser that updates the config.
var setters = map[string]func(c *Global, val string) error{
	"api_key":        func(c *Global, v string) error { c.APIKey = v; return nil },
	"provider":       func(c *Global, v string) error { c.Provider = normalizeProvider(v); return nil },
	"model":          func(c *Global, v string) error { c.Model = v; return nil },
	"base_url":       func(c *Global, v string) error { c.BaseURL = v; return nil },
	"models_catalog": func(c *Global, v string) error { c.ModelsCatalog = v; return nil },
	"ollama_host":    func(c *Global, v string) error { c.OllamaHost = v; return nil },
	"reports_dir":    func(c *Global, v string) error { c.ReportsDir = v; return nil },
	"charts_dir":     func(c *Global, v string) error { c.ChartsDir = v; return nil },
	"report_title":   func(c *Global, v string) error { c.ReportTitle = v; return nil },
	"report_author":  func(c *Global, v string) error { c.ReportAuthor = v; return nil },
	"report_font":    func(c *Global, v string) error { c.ReportFont = v; return nil },
	"max_tokens":     intSetter("max_tokens", func(c *Global, i int) { c.MaxTokens = i }),
	"max_attempts":   intSetter("max_attempts", func(c *Global, i int) { c.MaxAttempts = i }),
	"http_timeout_sec": intSetter("http_timeout_sec", func(c *Global, i int) {
		c.HTTPTimeoutSec = i
	}),
	"chart_dpi": intSetter("chart_dpi", func(c *Global, i int) { c.ChartDPI = i }),
	"temperature": func(c *Global, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid float for temperature: %w", err)
		}
		c.Temperature = f
		return nil
	},
	"export_xlsx": func(c *Global, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid bool for export_xlsx: %w", err)
		}
		c.ExportXLSX = b
		return nil
	},
}

func intSetter(key string, set func(*Global, int)) func(*Global, string) error {
	return func(c *Global, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		set(c, i)
		return nil
	}
}

// Set parses val into the field named by key and re-validates the result.
// The config is left unchanged on error.
func (c *Global) Set(key, val string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key: %s (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := set(&next, val); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

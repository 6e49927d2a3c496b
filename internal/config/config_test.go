package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "AUTOREPORT_API_KEY", "AUTOREPORT_MODEL", "AUTOREPORT_PROVIDER", "AUTOREPORT_MAX_ATTEMPTS"} {
		t.Setenv(k, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider)
	assert.Equal(t, "gpt-3.5-turbo", c.Model)
	assert.Equal(t, 1500, c.MaxTokens)
	assert.Equal(t, 0.0, c.Temperature)
	assert.Equal(t, 2, c.MaxAttempts)
	assert.Equal(t, 60, c.HTTPTimeoutSec)
	assert.Equal(t, 300, c.ChartDPI)
	assert.Equal(t, "reports", c.ReportsDir)
	assert.Equal(t, filepath.Join("reports", "visualizations"), c.ResolvedChartsDir())
	assert.Empty(t, c.APIKey)
	assert.False(t, c.ExportXLSX)
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "provider: local\nmodel: file-model\nmax_attempts: 4\ncharts_dir: /tmp/charts\n")
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Provider)
	assert.Equal(t, "env-model", c.Model)
	assert.Equal(t, 4, c.MaxAttempts)
	assert.Equal(t, "sk-test", c.APIKey)
	assert.Equal(t, "/tmp/charts", c.ResolvedChartsDir())
}

func TestPrefixedEnvWinsOverOpenAIEnv(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-generic")
	t.Setenv("AUTOREPORT_API_KEY", "sk-specific")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-specific", c.APIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, "max_attempts: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxAttempts")

	_, err = Load(writeConfig(t, "provider: carrier-pigeon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Provider")
}

func TestSet(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)

	require.NoError(t, c.Set("provider", "LOCAL"))
	assert.Equal(t, "ollama", c.Provider)
	require.NoError(t, c.Set("temperature", "0.4"))
	assert.Equal(t, 0.4, c.Temperature)
	require.NoError(t, c.Set("export_xlsx", "true"))
	assert.True(t, c.ExportXLSX)

	assert.Error(t, c.Set("temperature", "warm"))
	assert.Error(t, c.Set("nope", "1"))

	err = c.Set("max_attempts", "0")
	assert.Error(t, err)
	assert.Equal(t, 2, c.MaxAttempts, "rejected value must not be applied")

	assert.Error(t, c.Set("report_font", filepath.Join(t.TempDir(), "missing.ttf")))
	font := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(font, []byte("ttf"), 0o644))
	require.NoError(t, c.Set("report_font", font))
	assert.Equal(t, font, c.ReportFont)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("model", "gpt-4o-mini"))
	require.NoError(t, c.Set("chart_dpi", "150"))
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".autoreport", "config.yaml"))
	require.NoError(t, err)

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api_key")
	assert.IsNonDecreasing(t, keys)
}

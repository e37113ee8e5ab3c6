package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "capital.db", cfg.Store.DSN)
	assert.Equal(t, "excluded", cfg.Pipeline.MissingMonthPolicy)
	assert.Equal(t, "", cfg.Pipeline.AsOf)
	assert.Equal(t, "PROJECT_NAME", cfg.Report.GroupBy)
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.Equal(t, 10.0, cfg.Report.HighlightThreshold)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.MaxUploadMB)
	assert.Equal(t, 30, cfg.Ingest.TimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CAPITAL_STORE_DSN", "/tmp/other.db")
	t.Setenv("CAPITAL_PIPELINE_MISSING_MONTH_POLICY", "zero")
	t.Setenv("CAPITAL_REPORT_TOP_N", "3")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Store.DSN)
	assert.Equal(t, "zero", cfg.Pipeline.MissingMonthPolicy)
	assert.Equal(t, 3, cfg.Report.TopN)
}

func TestLoadConfigFile(t *testing.T) {
	chdirTemp(t)
	assert.NoError(t, os.WriteFile("config.yaml", []byte(
		"pipeline:\n  as_of: \"2025-06-15\"\nreport:\n  group_by: PROJECT_MANAGER\n"), 0o644))

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "2025-06-15", cfg.Pipeline.AsOf)
	assert.Equal(t, "PROJECT_MANAGER", cfg.Report.GroupBy)
	// Untouched keys keep their defaults.
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestAsOfTime(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	got, err := PipelineConfig{}.AsOfTime(now)
	assert.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = PipelineConfig{AsOf: "2025-06-15"}.AsOfTime(now)
	assert.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 15, got.Day())

	_, err = PipelineConfig{AsOf: "15/06/2025"}.AsOfTime(now)
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
}

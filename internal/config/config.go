// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// IngestConfig configures input retrieval and parsing.
type IngestConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Delimiter   string  `yaml:"delimiter" mapstructure:"delimiter"`
	Sheet       string  `yaml:"sheet" mapstructure:"sheet"`
}

// PipelineConfig configures classification and derivation.
type PipelineConfig struct {
	// AsOf pins the reporting date (YYYY-MM-DD). Empty means today.
	AsOf string `yaml:"as_of" mapstructure:"as_of"`
	// MissingMonthPolicy is "excluded" or "zero".
	MissingMonthPolicy string `yaml:"missing_month_policy" mapstructure:"missing_month_policy"`
}

// AsOfTime resolves the configured as-of date, falling back to now.
func (c PipelineConfig) AsOfTime(now time.Time) (time.Time, error) {
	if c.AsOf == "" {
		return now, nil
	}
	t, err := time.Parse("2006-01-02", c.AsOf)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "config: parse as_of %q", c.AsOf)
	}
	return t, nil
}

// ReportConfig configures aggregation and report rendering.
type ReportConfig struct {
	GroupBy            string  `yaml:"group_by" mapstructure:"group_by"`
	TopN               int     `yaml:"top_n" mapstructure:"top_n"`
	HighlightThreshold float64 `yaml:"highlight_threshold" mapstructure:"highlight_threshold"`
}

// BatchConfig configures concurrent multi-file processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the upload server.
type ServerConfig struct {
	Port        int `yaml:"port" mapstructure:"port"`
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CAPITAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "capital.db")
	v.SetDefault("ingest.timeout_secs", 30)
	v.SetDefault("ingest.max_retries", 3)
	v.SetDefault("ingest.rate_per_sec", 5)
	v.SetDefault("pipeline.missing_month_policy", "excluded")
	v.SetDefault("report.group_by", "PROJECT_NAME")
	v.SetDefault("report.top_n", 5)
	v.SetDefault("report.highlight_threshold", 10)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 64)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Package config loads the command line configuration from flags,
// PDFOUTLINE_* environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/calibrate"
	"github.com/tsawler/pdfoutline/internal/batch"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/tables"
)

// EnvPrefix prefixes every environment variable read by the configuration
const EnvPrefix = "PDFOUTLINE"

// Config is the complete command line configuration
type Config struct {
	Backends         []string      `mapstructure:"backends"`
	BackendTimeout   time.Duration `mapstructure:"backend_timeout"`
	DocumentTimeout  time.Duration `mapstructure:"document_timeout"`
	Workers          int           `mapstructure:"workers"`
	Output           string        `mapstructure:"output"`
	MetricsFile      string        `mapstructure:"metrics_file"`
	StripRunningText bool          `mapstructure:"strip_running_text"`
	FallbackSection  string        `mapstructure:"fallback_section"`

	Log         LogConfig         `mapstructure:"log"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Tables      TablesConfig      `mapstructure:"tables"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	JSON   bool   `mapstructure:"json"   yaml:"json"`
	Source bool   `mapstructure:"source" yaml:"source"`
}

// CalibrationConfig mirrors calibrate.Config
type CalibrationConfig struct {
	MinGap      float64 `mapstructure:"min_gap"      yaml:"min_gap"`
	RelativeGap float64 `mapstructure:"relative_gap" yaml:"relative_gap"`
	MinBandGap  float64 `mapstructure:"min_band_gap" yaml:"min_band_gap"`
	TitleMargin float64 `mapstructure:"title_margin" yaml:"title_margin"`
}

// TablesConfig selects and tunes the table detector
type TablesConfig struct {
	Detector       string `mapstructure:"detector"        yaml:"detector"`
	MinRows        int    `mapstructure:"min_rows"        yaml:"min_rows"`
	MinCols        int    `mapstructure:"min_cols"        yaml:"min_cols"`
	MinSpaces      int    `mapstructure:"min_spaces"      yaml:"min_spaces"`
	AlignTolerance int    `mapstructure:"align_tolerance" yaml:"align_tolerance"`
}

// Default returns the built-in configuration
func Default() *Config {
	cal := calibrate.DefaultConfig()
	tab := tables.DefaultConfig()
	return &Config{
		Backends:         append([]string(nil), backend.DefaultOrder...),
		BackendTimeout:   backend.DefaultBudget,
		DocumentTimeout:  batch.DefaultDocumentTimeout,
		Workers:          runtime.NumCPU(),
		Output:           "./pdfoutline-out",
		StripRunningText: true,
		Log: LogConfig{
			Level: "info",
		},
		Calibration: CalibrationConfig{
			MinGap:      cal.MinGap,
			RelativeGap: cal.RelativeGap,
			MinBandGap:  cal.MinBandGap,
			TitleMargin: cal.TitleMargin,
		},
		Tables: TablesConfig{
			Detector:       tables.DelimitedName,
			MinRows:        tab.MinRows,
			MinCols:        tab.MinCols,
			MinSpaces:      tab.MinSpaces,
			AlignTolerance: tab.AlignTolerance,
		},
	}
}

// SetDefaults registers every key with its default value. Keys unknown to
// viper are not bound to the environment on Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backends", d.Backends)
	v.SetDefault("backend_timeout", d.BackendTimeout)
	v.SetDefault("document_timeout", d.DocumentTimeout)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("output", d.Output)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("strip_running_text", d.StripRunningText)
	v.SetDefault("fallback_section", d.FallbackSection)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.source", d.Log.Source)
	v.SetDefault("calibration.min_gap", d.Calibration.MinGap)
	v.SetDefault("calibration.relative_gap", d.Calibration.RelativeGap)
	v.SetDefault("calibration.min_band_gap", d.Calibration.MinBandGap)
	v.SetDefault("calibration.title_margin", d.Calibration.TitleMargin)
	v.SetDefault("tables.detector", d.Tables.Detector)
	v.SetDefault("tables.min_rows", d.Tables.MinRows)
	v.SetDefault("tables.min_cols", d.Tables.MinCols)
	v.SetDefault("tables.min_spaces", d.Tables.MinSpaces)
	v.SetDefault("tables.align_tolerance", d.Tables.AlignTolerance)
}

// New creates a viper instance reading PDFOUTLINE_* variables, with nested
// keys mapped to underscores (log.level is PDFOUTLINE_LOG_LEVEL)
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if len(c.Backends) == 0 {
		errs = append(errs, errors.New("backends: at least one backend is required"))
	}
	for _, name := range c.Backends {
		if _, err := backend.Get(name); err != nil {
			errs = append(errs, fmt.Errorf("backends: %w", err))
		}
	}
	if c.BackendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("backend_timeout must be positive, got %s", c.BackendTimeout))
	}
	if c.DocumentTimeout <= 0 {
		errs = append(errs, fmt.Errorf("document_timeout must be positive, got %s", c.DocumentTimeout))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if tables.GetDetector(c.Tables.Detector) == nil {
		errs = append(errs, fmt.Errorf("tables.detector: unknown detector %q", c.Tables.Detector))
	}
	if err := c.TableConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tables: %w", err))
	}
	return errors.Join(errs...)
}

// CalibrationParams converts the calibration section
func (c *Config) CalibrationParams() calibrate.Config {
	return calibrate.Config{
		MinGap:      c.Calibration.MinGap,
		RelativeGap: c.Calibration.RelativeGap,
		MinBandGap:  c.Calibration.MinBandGap,
		TitleMargin: c.Calibration.TitleMargin,
	}
}

// HierarchyParams returns the outline construction options
func (c *Config) HierarchyParams() layout.HierarchyConfig {
	h := layout.DefaultHierarchyConfig()
	h.FallbackSection = c.FallbackSection
	return h
}

// TableConfig converts the tables section
func (c *Config) TableConfig() tables.Config {
	return tables.Config{
		MinRows:        c.Tables.MinRows,
		MinCols:        c.Tables.MinCols,
		MinSpaces:      c.Tables.MinSpaces,
		AlignTolerance: c.Tables.AlignTolerance,
	}
}

// Processor returns a Processor template carrying the configuration
func (c *Config) Processor(log pdfoutline.Logger) *pdfoutline.Processor {
	return pdfoutline.Open("").
		Backends(c.Backends...).
		BackendTimeout(c.BackendTimeout).
		Calibration(c.CalibrationParams()).
		StripRunningText(c.StripRunningText).
		Hierarchy(c.HierarchyParams()).
		TableDetector(c.Tables.Detector, c.TableConfig()).
		Logger(log)
}

// BatchConfig returns the batch runner settings
func (c *Config) BatchConfig() batch.Config {
	return batch.Config{
		OutputDir:       c.Output,
		Workers:         c.Workers,
		DocumentTimeout: c.DocumentTimeout,
	}
}

// file is the YAML form of Config; durations are written as "60s"
type file struct {
	Backends         []string          `yaml:"backends"`
	BackendTimeout   string            `yaml:"backend_timeout"`
	DocumentTimeout  string            `yaml:"document_timeout"`
	Workers          int               `yaml:"workers"`
	Output           string            `yaml:"output"`
	MetricsFile      string            `yaml:"metrics_file"`
	StripRunningText bool              `yaml:"strip_running_text"`
	FallbackSection  string            `yaml:"fallback_section"`
	Log              LogConfig         `yaml:"log"`
	Calibration      CalibrationConfig `yaml:"calibration"`
	Tables           TablesConfig      `yaml:"tables"`
}

// MarshalYAML implements yaml.Marshaler
func (c Config) MarshalYAML() (any, error) {
	return file{
		Backends:         c.Backends,
		BackendTimeout:   c.BackendTimeout.String(),
		DocumentTimeout:  c.DocumentTimeout.String(),
		Workers:          c.Workers,
		Output:           c.Output,
		MetricsFile:      c.MetricsFile,
		StripRunningText: c.StripRunningText,
		FallbackSection:  c.FallbackSection,
		Log:              c.Log,
		Calibration:      c.Calibration,
		Tables:           c.Tables,
	}, nil
}

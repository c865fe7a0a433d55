package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want at least 1", cfg.Workers)
	}
	if !cfg.StripRunningText {
		t.Error("StripRunningText should default to true")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `backends: [pdfcpu, plaintext]
backend_timeout: 30s
document_timeout: 2m
workers: 2
output: /tmp/out
log:
  level: debug
  json: true
calibration:
  title_margin: 0.2
tables:
  min_rows: 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"backends", cfg.Backends, []string{"pdfcpu", "plaintext"}},
		{"backend_timeout", cfg.BackendTimeout, 30 * time.Second},
		{"document_timeout", cfg.DocumentTimeout, 2 * time.Minute},
		{"workers", cfg.Workers, 2},
		{"output", cfg.Output, "/tmp/out"},
		{"log.level", cfg.Log.Level, "debug"},
		{"log.json", cfg.Log.JSON, true},
		{"calibration.title_margin", cfg.Calibration.TitleMargin, 0.2},
		{"calibration.min_gap default", cfg.Calibration.MinGap, 0.05},
		{"tables.min_rows", cfg.Tables.MinRows, 4},
		{"tables.min_cols default", cfg.Tables.MinCols, 2},
		{"strip_running_text default", cfg.StripRunningText, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PDFOUTLINE_WORKERS", "3")
	t.Setenv("PDFOUTLINE_LOG_LEVEL", "warn")
	t.Setenv("PDFOUTLINE_BACKENDS", "pdfcpu,plaintext")
	t.Setenv("PDFOUTLINE_DOCUMENT_TIMEOUT", "90s")
	t.Setenv("PDFOUTLINE_FALLBACK_SECTION", "Content")
	t.Setenv("PDFOUTLINE_TABLES_ALIGN_TOLERANCE", "4")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if !reflect.DeepEqual(cfg.Backends, []string{"pdfcpu", "plaintext"}) {
		t.Errorf("Backends = %v, want [pdfcpu plaintext]", cfg.Backends)
	}
	if cfg.DocumentTimeout != 90*time.Second {
		t.Errorf("DocumentTimeout = %s, want 1m30s", cfg.DocumentTimeout)
	}
	if got := cfg.HierarchyParams(); got.FallbackSection != "Content" || !got.TrimColon {
		t.Errorf("HierarchyParams() = %+v", got)
	}
	if got := cfg.TableConfig().AlignTolerance; got != 4 {
		t.Errorf("TableConfig().AlignTolerance = %d, want 4", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no backends", func(c *Config) { c.Backends = nil }, "at least one backend"},
		{"unknown backend", func(c *Config) { c.Backends = []string{"nope"} }, `unknown backend "nope"`},
		{"zero backend timeout", func(c *Config) { c.BackendTimeout = 0 }, "backend_timeout"},
		{"negative document timeout", func(c *Config) { c.DocumentTimeout = -time.Second }, "document_timeout"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"unknown detector", func(c *Config) { c.Tables.Detector = "ocr" }, `unknown detector "ocr"`},
		{"too few rows", func(c *Config) { c.Tables.MinRows = 1 }, "min rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestMarshalYAML(t *testing.T) {
	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"backend_timeout: 1m0s",
		"document_timeout: 5m0s",
		"level: info",
		"title_margin: 0.12",
		"detector: delimited",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}

	// the written file loads back to the same configuration
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	v := New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip = %+v, want %+v", loaded, cfg)
	}
}

func TestProcessor_InvalidBackend(t *testing.T) {
	cfg := Default()
	cfg.Backends = []string{"nope"}
	if _, err := cfg.Processor(nil).Process(context.Background()); err == nil {
		t.Error("expected a configuration error")
	}
}

func TestBatchConfig(t *testing.T) {
	cfg := Default()
	cfg.Output = "out"
	cfg.Workers = 7
	bc := cfg.BatchConfig()
	if bc.OutputDir != "out" || bc.Workers != 7 || bc.DocumentTimeout != cfg.DocumentTimeout {
		t.Errorf("BatchConfig() = %+v", bc)
	}
}

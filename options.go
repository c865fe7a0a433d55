package pdfoutline

import (
	"time"

	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/calibrate"
	"github.com/tsawler/pdfoutline/features"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/tables"
)

// Options holds configuration for document processing
type Options struct {
	// Backend selection, in priority order. Ignored when sources is set.
	backends       []string
	sources        []backend.Source
	backendTimeout time.Duration

	// Classification
	keywords     features.KeywordScorer
	calibration  calibrate.Config
	hierarchy    layout.HierarchyConfig
	stripRunning bool

	// Table detection
	tableDetector string
	tableConfig   tables.Config

	// Observability
	logger    Logger
	onFailure func(*backend.BackendExtractionError)

	now func() time.Time
}

// defaultOptions returns the default processing options
func defaultOptions() Options {
	return Options{
		backends:       append([]string(nil), backend.DefaultOrder...),
		backendTimeout: backend.DefaultBudget,
		keywords:       features.NewFrequencyKeywords(),
		calibration:    calibrate.DefaultConfig(),
		hierarchy:      layout.DefaultHierarchyConfig(),
		stripRunning:   true,
		tableDetector:  tables.DelimitedName,
		tableConfig:    tables.DefaultConfig(),
		logger:         nopLogger{},
		now:            time.Now,
	}
}

// clone creates a deep copy of Options
func (o Options) clone() Options {
	newOpts := o
	if o.backends != nil {
		newOpts.backends = append([]string(nil), o.backends...)
	}
	if o.sources != nil {
		newOpts.sources = append([]backend.Source(nil), o.sources...)
	}
	return newOpts
}

// Logger receives the pipeline's structured log records. It is satisfied
// by the module's internal logger and by thin adapters over most
// structured loggers.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Package batch processes many documents concurrently and writes one JSON
// record per document.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/internal/logger"
	"github.com/tsawler/pdfoutline/internal/metrics"
	"github.com/tsawler/pdfoutline/model"
)

// DefaultDocumentTimeout bounds the processing of one document
const DefaultDocumentTimeout = 5 * time.Minute

// Config configures a batch run
type Config struct {
	// OutputDir receives one <stem>.json per input
	OutputDir string

	// Workers is the number of documents processed concurrently.
	// Default: runtime.NumCPU()
	Workers int

	// DocumentTimeout bounds each document, all backend attempts included.
	// Default: DefaultDocumentTimeout
	DocumentTimeout time.Duration
}

// Runner processes documents with a shared Processor configuration
type Runner struct {
	config   Config
	template *pdfoutline.Processor
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewRunner creates a runner. template carries the processing options
// applied to every document; its source is replaced per input.
func NewRunner(cfg Config, template *pdfoutline.Processor, log logger.Logger, m *metrics.Metrics) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.DocumentTimeout <= 0 {
		cfg.DocumentTimeout = DefaultDocumentTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	if template == nil {
		template = pdfoutline.Open("")
	}
	return &Runner{config: cfg, template: template, log: log, metrics: m}
}

// DocumentResult is the outcome for one input
type DocumentResult struct {
	Input  string
	Output string

	// Result is nil only when the processor configuration was invalid
	Result *model.Result

	// Outcome is one of the metrics outcome labels
	Outcome string

	// ProcessErr is the processing error; the minimal record is still written
	ProcessErr error

	// WriteErr is set when the output file could not be written
	WriteErr error

	// Failures are the backends that failed before one succeeded
	Failures []string

	Elapsed time.Duration
}

// GetError implements Result. Only output failures are fatal for a document.
func (r *DocumentResult) GetError() error {
	return r.WriteErr
}

// Summary aggregates a batch run
type Summary struct {
	Total     int
	Succeeded int
	Degraded  int
	Failed    int

	// WriteErrors counts documents whose output could not be written
	WriteErrors int

	// Results are sorted by input path
	Results []*DocumentResult
	Elapsed time.Duration
}

// Run processes files and writes their records into the output directory.
// A document that fails never stops the batch.
func (r *Runner) Run(ctx context.Context, files []string) (*Summary, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	start := time.Now()
	outputs := OutputNames(files)

	pool := NewPool(ctx, r.config.Workers)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, f := range files {
			job := &documentJob{
				runner: r,
				input:  f,
				output: filepath.Join(r.config.OutputDir, outputs[i]),
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	summary := &Summary{Total: len(files)}
	for res := range pool.Results() {
		dr := res.(*DocumentResult)
		summary.Results = append(summary.Results, dr)
		switch dr.Outcome {
		case metrics.OutcomeSuccess:
			summary.Succeeded++
		case metrics.OutcomeDegraded:
			summary.Degraded++
		default:
			summary.Failed++
		}
		if dr.WriteErr != nil {
			summary.WriteErrors++
		}
	}
	slices.SortFunc(summary.Results, func(a, b *DocumentResult) int {
		return strings.Compare(a.Input, b.Input)
	})
	summary.Elapsed = time.Since(start)

	r.log.Info("batch finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"degraded", summary.Degraded,
		"failed", summary.Failed,
		"write_errors", summary.WriteErrors,
		"elapsed", summary.Elapsed.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return summary, nil
}

// documentJob processes one input
type documentJob struct {
	runner *Runner
	input  string
	output string
}

// Execute implements Job
func (j *documentJob) Execute(ctx context.Context) Result {
	r := j.runner
	log := r.log.With("file", j.input)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.DocumentTimeout)
	defer cancel()

	var mu sync.Mutex
	var failures []string
	proc := r.template.
		Input(j.input).
		Logger(log).
		OnBackendFailure(func(e *backend.BackendExtractionError) {
			mu.Lock()
			failures = append(failures, e.Backend)
			mu.Unlock()
			if r.metrics != nil {
				r.metrics.BackendFailure(e.Backend)
			}
		})

	res, err := proc.Process(ctx)
	dr := &DocumentResult{
		Input:      j.input,
		Output:     j.output,
		Result:     res,
		ProcessErr: err,
		Elapsed:    time.Since(start),
	}
	mu.Lock()
	dr.Failures = failures
	mu.Unlock()

	switch {
	case err != nil:
		dr.Outcome = metrics.OutcomeFailed
		log.Error("document failed", "error", err)
	case len(dr.Failures) > 0:
		dr.Outcome = metrics.OutcomeDegraded
	default:
		dr.Outcome = metrics.OutcomeSuccess
	}

	if res != nil {
		if werr := WriteResult(j.output, res); werr != nil {
			dr.WriteErr = werr
			log.Error("output not written", "output", j.output, "error", werr)
		}
	}

	if r.metrics != nil {
		conf, sections, tables := 0.0, 0, 0
		if res != nil {
			conf = res.Metadata.ConfidenceScore
			sections = len(res.Content.Sections)
			tables = len(res.Content.Tables)
		}
		r.metrics.Document(dr.Outcome, dr.Elapsed, conf, sections, tables)
	}
	return dr
}

// WriteResult writes res to path as JSON indented with two spaces
func WriteResult(path string, res *model.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// OutputNames maps each input to "<stem>.json". Inputs sharing a stem get
// "<stem>-2.json", "<stem>-3.json" and so on, in input order.
func OutputNames(files []string) []string {
	seen := make(map[string]int)
	used := make(map[string]bool)
	names := make([]string, len(files))
	for i, f := range files {
		base := filepath.Base(f)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if stem == "" {
			stem = "document"
		}
		name := stem + ".json"
		for used[strings.ToLower(name)] {
			seen[stem]++
			name = fmt.Sprintf("%s-%d.json", stem, seen[stem]+1)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

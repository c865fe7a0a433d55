package pdfoutline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/calibrate"
	"github.com/tsawler/pdfoutline/features"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/tables"
)

// ExtractionMethodNone is the extraction method reported when no backend
// could read the document
const ExtractionMethodNone = "none"

// Processor provides a fluent interface for processing one document.
// Each configuration method returns a new Processor, so a configured
// Processor can be shared and reused.
type Processor struct {
	// Source: a path, or an extraction acquired elsewhere
	path       string
	filename   string
	extraction *backend.Extraction
	rank       int

	// Configuration
	options Options

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Processor with a deep copy of options
func (p *Processor) clone() *Processor {
	return &Processor{
		path:       p.path,
		filename:   p.filename,
		extraction: p.extraction,
		rank:       p.rank,
		options:    p.options.clone(),
		err:        p.err,
	}
}

// ============================================================================
// Configuration Methods (return new Processor instance)
// ============================================================================

// Backends sets the backend priority list by registry name. Unknown names
// are reported by Process.
//
// Example:
//
//	res, err := pdfoutline.Open("doc.pdf").Backends("pdfcpu", "plaintext").Process(ctx)
func (p *Processor) Backends(names ...string) *Processor {
	np := p.clone()
	np.options.backends = append([]string(nil), names...)
	np.options.sources = nil
	for _, name := range names {
		if _, err := backend.Get(name); err != nil && np.err == nil {
			np.err = err
		}
	}
	if len(names) == 0 && np.err == nil {
		np.err = errors.New("empty backend list")
	}
	return np
}

// Sources sets the backends directly, bypassing the registry
func (p *Processor) Sources(sources ...backend.Source) *Processor {
	np := p.clone()
	np.options.sources = append([]backend.Source(nil), sources...)
	return np
}

// BackendTimeout bounds each backend attempt. Zero or negative values
// restore the default budget.
func (p *Processor) BackendTimeout(d time.Duration) *Processor {
	np := p.clone()
	if d <= 0 {
		d = backend.DefaultBudget
	}
	np.options.backendTimeout = d
	return np
}

// Keywords replaces the keyword signal used by feature extraction. A nil
// scorer disables the signal.
func (p *Processor) Keywords(k features.KeywordScorer) *Processor {
	np := p.clone()
	if k == nil {
		k = features.NoKeywords{}
	}
	np.options.keywords = k
	return np
}

// Calibration sets the threshold calibration parameters
func (p *Processor) Calibration(cfg calibrate.Config) *Processor {
	np := p.clone()
	np.options.calibration = cfg
	return np
}

// Hierarchy sets the outline construction options
func (p *Processor) Hierarchy(cfg layout.HierarchyConfig) *Processor {
	np := p.clone()
	np.options.hierarchy = cfg
	return np
}

// StripRunningText controls whether running headers, footers and page
// numbers repeated across pages are removed before classification.
// Default: true
func (p *Processor) StripRunningText(strip bool) *Processor {
	np := p.clone()
	np.options.stripRunning = strip
	return np
}

// TableDetector selects the table detector by registry name and sets its
// configuration
func (p *Processor) TableDetector(name string, cfg tables.Config) *Processor {
	np := p.clone()
	np.options.tableDetector = name
	np.options.tableConfig = cfg
	if tables.GetDetector(name) == nil && np.err == nil {
		np.err = fmt.Errorf("unknown table detector %q (available: %s)", name, strings.Join(tables.ListDetectors(), ", "))
	} else if err := cfg.Validate(); err != nil && np.err == nil {
		np.err = fmt.Errorf("table detector: %w", err)
	}
	return np
}

// Logger sets the destination of the pipeline's log records
func (p *Processor) Logger(l Logger) *Processor {
	np := p.clone()
	if l == nil {
		l = nopLogger{}
	}
	np.options.logger = l
	return np
}

// OnBackendFailure registers a callback invoked for every failed backend
// attempt
func (p *Processor) OnBackendFailure(fn func(*backend.BackendExtractionError)) *Processor {
	np := p.clone()
	np.options.onFailure = fn
	return np
}

// Filename sets the name reported in the document record. Open defaults it
// to the base name of the path.
func (p *Processor) Filename(name string) *Processor {
	np := p.clone()
	np.filename = name
	return np
}

// Input points a configured Processor at another PDF, keeping its options.
// Batch runs use it to apply one configuration to many documents.
func (p *Processor) Input(path string) *Processor {
	np := p.clone()
	np.path = path
	np.filename = filepath.Base(path)
	np.extraction = nil
	np.rank = 0
	return np
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Process acquires the document's blocks and returns its record.
//
// When every backend fails, Process returns a minimal record (no sections,
// no tables, confidence 0, extraction method "none") together with the
// *backend.AllBackendsFailedError, so callers can log the failure and still
// emit output. Configuration errors return a nil record.
func (p *Processor) Process(ctx context.Context) (*model.Result, error) {
	if p.err != nil {
		return nil, p.err
	}

	start := p.options.now()
	log := p.options.logger

	ext, rank := p.extraction, p.rank
	if ext == nil {
		chain, err := p.chain()
		if err != nil {
			return nil, err
		}
		ext, rank, err = chain.Extract(ctx, p.path)
		if err != nil {
			log.Warn("no backend could read the document", "file", p.path, "error", err)
			res := model.EmptyResult(p.filename, ExtractionMethodNone, start)
			res.Metadata.ProcessingTimeMS = p.options.now().Sub(start).Milliseconds()
			return res, err
		}
		if rank > 0 {
			log.Warn("using fallback backend", "file", p.path, "backend", ext.Backend, "rank", rank)
		}
	}

	res, err := p.analyze(ext, rank, start)
	if err != nil {
		return nil, err
	}
	log.Info("document processed",
		"file", p.filename,
		"backend", res.Metadata.ExtractionMethod,
		"sections", len(res.Content.Sections),
		"tables", len(res.Content.Tables),
		"confidence", res.Metadata.ConfidenceScore,
		"ms", res.Metadata.ProcessingTimeMS)
	return res, nil
}

// Markdown processes the document and renders its outline as a Markdown
// table of contents followed by the detected tables
func (p *Processor) Markdown(ctx context.Context) (string, error) {
	res, err := p.Process(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	outline := res.Outline()
	sb.WriteString(outline.Markdown())
	for _, t := range res.Content.Tables {
		fmt.Fprintf(&sb, "\n**Table %d** (page %d)\n\n", t.ID, t.Page)
		sb.WriteString(t.ToMarkdown())
	}
	return sb.String(), nil
}

// chain builds the backend chain from the configured sources or names
func (p *Processor) chain() (*backend.Chain, error) {
	var chain *backend.Chain
	if len(p.options.sources) > 0 {
		chain = backend.NewChain(p.options.sources...)
		chain.Budget = p.options.backendTimeout
	} else {
		var err error
		chain, err = backend.NewChainFromNames(p.options.backends, p.options.backendTimeout)
		if err != nil {
			return nil, err
		}
	}

	log := p.options.logger
	onFailure := p.options.onFailure
	chain.OnFailure = func(e *backend.BackendExtractionError) {
		log.Warn("backend failed", "backend", e.Backend, "file", e.Path, "error", e.Err)
		if onFailure != nil {
			onFailure(e)
		}
	}
	return chain, nil
}

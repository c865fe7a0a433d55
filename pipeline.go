package pdfoutline

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/calibrate"
	"github.com/tsawler/pdfoutline/confidence"
	"github.com/tsawler/pdfoutline/features"
	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/scoring"
	"github.com/tsawler/pdfoutline/tables"
)

// Classification is the outcome of classifying one document's blocks
type Classification struct {
	Vectors    []model.FeatureVector
	Candidates []model.HeadingCandidate
	Cutoffs    calibrate.Cutoffs
	Outline    model.DocumentOutline
}

// Classifier runs feature extraction, scoring, calibration and hierarchy
// construction. The zero value is not usable; see NewClassifier.
type Classifier struct {
	Keywords    features.KeywordScorer
	Calibration calibrate.Config
	Hierarchy   layout.HierarchyConfig
}

// NewClassifier returns a classifier with default settings
func NewClassifier() Classifier {
	return Classifier{
		Keywords:    features.NewFrequencyKeywords(),
		Calibration: calibrate.DefaultConfig(),
		Hierarchy:   layout.DefaultHierarchyConfig(),
	}
}

// Classify classifies blocks with the default classifier
func Classify(blocks []model.TextBlock) Classification {
	return NewClassifier().Classify(blocks)
}

// Classify returns the outline of blocks. It is pure: the same blocks
// always give the same classification and the input is not modified.
func (c Classifier) Classify(blocks []model.TextBlock) Classification {
	vectors := features.NewExtractorWithKeywords(c.Keywords).Extract(blocks)
	cands := scoring.NewEngine().Score(blocks, vectors)
	cut := calibrate.Calibrate(cands, c.Calibration)
	outline := layout.NewHierarchyBuilderWithConfig(c.Hierarchy).Build(cands, cut)
	return Classification{
		Vectors:    vectors,
		Candidates: cands,
		Cutoffs:    cut,
		Outline:    outline,
	}
}

// analyze turns an extraction into a document record. The heading pipeline
// and the table scan run concurrently; a table detector that rejects its
// configuration fails the document.
func (p *Processor) analyze(ext *backend.Extraction, rank int, start time.Time) (*model.Result, error) {
	opts := p.options
	log := opts.logger

	blocks := ext.Blocks()
	if opts.stripRunning {
		var running *layout.RunningTextResult
		blocks, running = layout.NewRunningTextDetector().Filter(blocks)
		if running.HasHeadersOrFooters() {
			log.Debug("running text removed", "file", p.filename, "regions", running.Summary())
		}
	}

	classifier := Classifier{
		Keywords:    opts.keywords,
		Calibration: opts.calibration,
		Hierarchy:   opts.hierarchy,
	}

	var cls Classification
	var found []model.Table
	var g errgroup.Group
	g.Go(func() error {
		cls = classifier.Classify(blocks)
		return nil
	})
	g.Go(func() error {
		var err error
		found, err = p.detectTables(ext)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := cls.Cutoffs.Err(); err != nil {
		log.Debug("calibration found no heading bands", "file", p.filename, "error", err, "cutoffs", cls.Cutoffs.String())
	}

	score := confidence.Score(confidence.Input{
		Blocks:      blocks,
		Separation:  cls.Cutoffs.Separation,
		BackendRank: rank,
	})

	raw := ext.Text()
	if strings.TrimSpace(raw) == "" {
		raw = blockText(blocks)
	}
	meta := model.DocumentMetadata{
		ExtractionMethod: ext.Backend,
		ConfidenceScore:  score,
		Language:         lang.Detect(raw).String(),
		WordCount:        lang.WordCount(raw),
	}

	res := model.NewResult(p.filename, ext.PageCount(), cls.Outline, found, meta, start)
	res.Metadata.ProcessingTimeMS = opts.now().Sub(start).Milliseconds()
	return res, nil
}

// detectTables scans every page's raw text with the configured detector
func (p *Processor) detectTables(ext *backend.Extraction) ([]model.Table, error) {
	d := tables.GetDetector(p.options.tableDetector)
	if d == nil {
		return nil, fmt.Errorf("unknown table detector %q", p.options.tableDetector)
	}
	if err := d.Configure(p.options.tableConfig); err != nil {
		return nil, fmt.Errorf("configure table detector %s: %w", d.Name(), err)
	}
	pages := make([]tables.PageText, 0, len(ext.Pages))
	for _, pg := range ext.Pages {
		pages = append(pages, tables.PageText{Number: pg.Number, Text: pg.RawText})
	}
	return tables.DetectAll(d, pages), nil
}

// blockText joins block texts, for sources that supply no raw page text
func blockText(blocks []model.TextBlock) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n")
}

package pdfoutline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/tables"
)

var fixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func block(text string, x, y, h, size float64, bold bool, family string, page int) model.TextBlock {
	return model.TextBlock{
		Text:       text,
		FontSize:   size,
		Bold:       bold,
		FontFamily: family,
		BBox:       model.NewBBox(x, y, 450, h),
		PageWidth:  612,
		PageHeight: 792,
		Page:       page,
	}
}

// withClock pins the processing clock so results are reproducible
func withClock(p *Processor) *Processor {
	np := p.clone()
	np.options.now = func() time.Time { return fixedTime }
	return np
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// recordingLogger keeps every record for assertions
type recordingLogger struct {
	mu      sync.Mutex
	records []string
}

func (l *recordingLogger) add(level, msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, fmt.Sprint(level, " ", msg, " ", keyvals))
}

func (l *recordingLogger) Debug(msg string, kv ...any) { l.add("DEBUG", msg, kv...) }
func (l *recordingLogger) Info(msg string, kv ...any)  { l.add("INFO", msg, kv...) }
func (l *recordingLogger) Warn(msg string, kv ...any)  { l.add("WARN", msg, kv...) }

func (l *recordingLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if strings.Contains(r, s) {
			return true
		}
	}
	return false
}

// executiveSummary is a title page followed by a page of body text
func executiveSummary() []model.TextBlock {
	blocks := []model.TextBlock{
		block("Executive Summary", 72, 39.6, 24, 20, true, "Helvetica", 1),
	}
	bodies := []string{
		"Revenue grew in every region this year and margins improved as costs fell.",
		"The board approved a new dividend policy after reviewing the audited accounts.",
		"Headcount remained flat while productivity rose across the operating divisions.",
		"Capital spending focused on the data platform and the renewal of the fleet.",
	}
	for i, text := range bodies {
		blocks = append(blocks, block(text, 72, 72+28*float64(i), 24, 10, false, "Times", 2))
	}
	return blocks
}

const (
	introOne  = "This document describes the migration of the billing platform to the new cluster."
	introTwo  = "The work was planned over two quarters and completed ahead of the schedule."
	backOne   = "Earlier attempts stalled because the legacy schema could not be split safely."
	backTwo   = "The team therefore introduced an intermediate replication layer first."
	staffList = "Name\tAge\tCity\nAlice\t30\tNY\nBob\t25\tLA"
)

// numberedSections is a numbered H1 with an indented, smaller H2
func numberedSections() []model.TextBlock {
	return []model.TextBlock{
		block("1. Introduction", 20, 72, 19.2, 16, true, "Helvetica", 1),
		block(introOne, 20, 103, 12, 10, false, "Times", 1),
		block(introTwo, 20, 119, 12, 10, false, "Times", 1),
		block("1.1 Background", 40, 151, 16.8, 14, false, "Helvetica", 1),
		block(backOne, 20, 180, 12, 10, false, "Times", 1),
		block(backTwo, 20, 196, 12, 10, false, "Times", 1),
	}
}

func staticSource(label string, blocks []model.TextBlock, raw map[int]string) *backend.Static {
	return backend.NewStatic(label, backend.PagesFromBlocks(blocks, raw)...)
}

func TestScenario_TitleOnly(t *testing.T) {
	p := withClock(Open("/data/annual-report.pdf").Sources(staticSource("primary", executiveSummary(), nil)))

	res, err := p.Process(context.Background())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.DocumentInfo.Title == nil || *res.DocumentInfo.Title != "Executive Summary" {
		t.Fatalf("title = %v, want Executive Summary", res.DocumentInfo.Title)
	}
	if len(res.Content.Sections) != 0 {
		t.Errorf("expected no headings, got %+v", res.Content.Sections)
	}
	if res.DocumentInfo.Filename != "annual-report.pdf" {
		t.Errorf("filename = %q", res.DocumentInfo.Filename)
	}
	if res.DocumentInfo.Pages != 2 {
		t.Errorf("pages = %d, want 2", res.DocumentInfo.Pages)
	}
	if !res.DocumentInfo.ProcessingTimestamp.Equal(fixedTime) {
		t.Errorf("timestamp = %v", res.DocumentInfo.ProcessingTimestamp)
	}

	// no band separation, full metadata, primary backend
	if !approx(res.Metadata.ConfidenceScore, 0.6) {
		t.Errorf("confidence = %v, want 0.6", res.Metadata.ConfidenceScore)
	}
	if res.Metadata.ExtractionMethod != "primary" {
		t.Errorf("extraction method = %q", res.Metadata.ExtractionMethod)
	}
	if res.Metadata.Language != "en" {
		t.Errorf("language = %q, want en", res.Metadata.Language)
	}
}

func TestScenario_NumberedSections(t *testing.T) {
	p := withClock(Open("design.pdf").Sources(staticSource("primary", numberedSections(), nil)))

	res, err := p.Process(context.Background())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.DocumentInfo.Title != nil {
		t.Errorf("expected no title, got %q", *res.DocumentInfo.Title)
	}

	want := []model.Section{{
		ID:      1,
		Level:   model.LevelH1,
		Text:    "1. Introduction",
		Page:    1,
		Content: introOne + " " + introTwo,
		Children: []model.Section{{
			ID:      2,
			Level:   model.LevelH2,
			Text:    "1.1 Background",
			Page:    1,
			Content: backOne + " " + backTwo,
		}},
	}}
	if !reflect.DeepEqual(res.Content.Sections, want) {
		t.Errorf("sections =\n%+v\nwant\n%+v", res.Content.Sections, want)
	}

	outline := res.Outline()
	if err := outline.Validate(); err != nil {
		t.Errorf("outline invalid: %v", err)
	}

	words := 0
	for _, b := range numberedSections() {
		words += len(strings.Fields(b.Text))
	}
	if res.Metadata.WordCount != words {
		t.Errorf("word count = %d, want %d", res.Metadata.WordCount, words)
	}
	if res.Metadata.ConfidenceScore <= 0.6 {
		t.Errorf("separated bands should raise confidence above 0.6, got %v", res.Metadata.ConfidenceScore)
	}
}

func TestScenario_TabTable(t *testing.T) {
	blocks := []model.TextBlock{block("Staff list", 72, 72, 14, 12, true, "Helvetica", 1)}
	ext := &backend.Extraction{
		Backend: "primary",
		Pages:   backend.PagesFromBlocks(blocks, map[int]string{1: staffList}),
	}

	res, err := withClock(FromExtraction(ext, 0)).Process(context.Background())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []model.Table{{
		ID:        1,
		Page:      1,
		Headers:   []string{"Name", "Age", "City"},
		Rows:      [][]string{{"Alice", "30", "NY"}, {"Bob", "25", "LA"}},
		Delimiter: model.DelimiterTab,
	}}
	if !reflect.DeepEqual(res.Content.Tables, want) {
		t.Errorf("tables = %+v, want %+v", res.Content.Tables, want)
	}
	for _, tbl := range res.Content.Tables {
		if err := tbl.Validate(); err != nil {
			t.Errorf("table %d: %v", tbl.ID, err)
		}
	}
}

func TestScenario_FallbackBackend(t *testing.T) {
	corrupt := errors.New("xref table damaged")
	var failures []string

	p := withClock(Open("corrupt.pdf").
		Sources(backend.Failing("primary", corrupt), staticSource("fallback", numberedSections(), nil)).
		OnBackendFailure(func(e *backend.BackendExtractionError) {
			failures = append(failures, e.Backend)
		}))

	res, err := p.Process(context.Background())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Metadata.ExtractionMethod != "fallback" {
		t.Errorf("extraction method = %q, want fallback", res.Metadata.ExtractionMethod)
	}
	if !reflect.DeepEqual(failures, []string{"primary"}) {
		t.Errorf("failures = %v", failures)
	}
	if len(res.Content.Sections) != 1 {
		t.Errorf("expected the outline to be built from the fallback blocks, got %+v", res.Content.Sections)
	}

	// the same blocks from the primary backend score higher by the backend
	// signal alone: 0.25 x (1.0 - 0.6)
	primary, err := withClock(Open("ok.pdf").Sources(staticSource("primary", numberedSections(), nil))).Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := primary.Metadata.ConfidenceScore - res.Metadata.ConfidenceScore; !approx(diff, 0.1) {
		t.Errorf("confidence difference = %v, want 0.1", diff)
	}
}

func TestScenario_AllBackendsFail(t *testing.T) {
	logs := &recordingLogger{}
	p := withClock(Open("/in/broken.pdf").
		Sources(backend.Failing("primary", errors.New("bad header")), backend.Failing("fallback", errors.New("no pages"))).
		Logger(logs))

	res, err := p.Process(context.Background())

	var all *backend.AllBackendsFailedError
	if !errors.As(err, &all) {
		t.Fatalf("expected AllBackendsFailedError, got %v", err)
	}
	if len(all.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(all.Attempts))
	}
	if res == nil {
		t.Fatal("expected a minimal result alongside the error")
	}
	if len(res.Content.Sections) != 0 || len(res.Content.Tables) != 0 {
		t.Errorf("expected empty content, got %+v", res.Content)
	}
	if res.Metadata.ConfidenceScore != 0 {
		t.Errorf("confidence = %v, want 0", res.Metadata.ConfidenceScore)
	}
	if res.Metadata.ExtractionMethod != ExtractionMethodNone {
		t.Errorf("extraction method = %q", res.Metadata.ExtractionMethod)
	}
	if res.DocumentInfo.Filename != "broken.pdf" || res.DocumentInfo.Title != nil {
		t.Errorf("document info = %+v", res.DocumentInfo)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"sections":[]`, `"tables":[]`, `"title":null`, `"confidence_score":0`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s: %s", want, data)
		}
	}

	for _, want := range []string{"backend failed", "no backend could read the document"} {
		if !logs.contains(want) {
			t.Errorf("expected a %q log record", want)
		}
	}
}

func TestProcess_Deterministic(t *testing.T) {
	blocks := append(executiveSummary(), numberedSections()...)
	for i := range blocks[5:] {
		blocks[5+i].Page = 3
	}
	src := staticSource("primary", blocks, map[int]string{3: staffList})
	p := withClock(Open("mixed.pdf").Sources(src))

	first, err := p.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want, _ := json.Marshal(first)

	for i := 0; i < 5; i++ {
		res, err := p.Process(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		got, _ := json.Marshal(res)
		if string(got) != string(want) {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, want)
		}
	}
}

func TestProcess_StripsRunningText(t *testing.T) {
	var blocks []model.TextBlock
	for page := 1; page <= 3; page++ {
		blocks = append(blocks,
			block("ACME Corp Confidential", 72, 20, 10, 8, false, "Helvetica", page),
			block(fmt.Sprintf("Body text on page %d explains the quarterly figures in detail.", page), 72, 120, 12, 10, false, "Times", page),
			block(fmt.Sprintf("Page %d", page), 300, 760, 10, 8, false, "Helvetica", page),
		)
	}
	res, err := withClock(Open("furniture.pdf").Sources(staticSource("primary", blocks, nil))).Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	md := res.Outline()
	dump := md.Markdown()
	for _, s := range md.Flatten() {
		dump += s.Text + s.Content
	}
	if res.DocumentInfo.Title != nil {
		dump += *res.DocumentInfo.Title
	}
	if strings.Contains(dump, "Confidential") || strings.Contains(dump, "Page 2") {
		t.Errorf("running text leaked into the outline: %q", dump)
	}
}

func TestProcess_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		p    *Processor
	}{
		{"unknown backend", Open("x.pdf").Backends("ledongthuc", "acrobat")},
		{"empty backend list", Open("x.pdf").Backends()},
		{"unknown table detector", Open("x.pdf").TableDetector("lattice", tables.DefaultConfig())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.p.Process(context.Background())
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
		})
	}
}

var errTooFewRows = errors.New("strict detector needs at least 5 rows")

// strictDetector accepts only configurations with MinRows >= 5
type strictDetector struct{}

func (strictDetector) Detect(int, string) []model.Table { return nil }
func (strictDetector) Name() string                    { return "strict" }
func (strictDetector) Configure(cfg tables.Config) error {
	if cfg.MinRows < 5 {
		return errTooFewRows
	}
	return nil
}

func TestProcess_TableDetectorConfigureError(t *testing.T) {
	tables.RegisterDetector("strict", func() tables.Detector { return strictDetector{} })

	p := Open("x.pdf").Sources(staticSource("primary", numberedSections(), nil))

	res, err := p.TableDetector("strict", tables.DefaultConfig()).Process(context.Background())
	if !errors.Is(err, errTooFewRows) {
		t.Fatalf("expected the detector's configuration error, got %v", err)
	}
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}

	cfg := tables.DefaultConfig()
	cfg.MinRows = 5
	if _, err := p.TableDetector("strict", cfg).Process(context.Background()); err != nil {
		t.Errorf("Process() error = %v", err)
	}
}

func TestProcess_MissingFile(t *testing.T) {
	res, err := Open("/does/not/exist.pdf").BackendTimeout(5 * time.Second).Process(context.Background())

	var all *backend.AllBackendsFailedError
	if !errors.As(err, &all) {
		t.Fatalf("expected AllBackendsFailedError, got %v", err)
	}
	if len(all.Attempts) != len(backend.DefaultOrder) {
		t.Errorf("attempts = %d, want %d", len(all.Attempts), len(backend.DefaultOrder))
	}
	if res == nil || res.Metadata.ExtractionMethod != ExtractionMethodNone {
		t.Errorf("expected a minimal result, got %+v", res)
	}
}

func TestProcessorImmutability(t *testing.T) {
	base := Open("doc.pdf")
	stripped := base.StripRunningText(false)
	named := base.Backends("plaintext")

	if !base.options.stripRunning {
		t.Error("base processor was modified by StripRunningText")
	}
	if stripped.options.stripRunning {
		t.Error("derived processor did not take the option")
	}
	if !reflect.DeepEqual(base.options.backends, backend.DefaultOrder) {
		t.Errorf("base backends = %v", base.options.backends)
	}
	if !reflect.DeepEqual(named.options.backends, []string{"plaintext"}) {
		t.Errorf("derived backends = %v", named.options.backends)
	}
}

func TestClassify_Pure(t *testing.T) {
	blocks := numberedSections()
	for i := range blocks {
		blocks[i].Order = i
	}
	before := append([]model.TextBlock(nil), blocks...)

	first := Classify(blocks)
	second := Classify(blocks)

	if !reflect.DeepEqual(blocks, before) {
		t.Error("Classify modified its input")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Classify is not deterministic")
	}
	if len(first.Candidates) != len(blocks) || len(first.Vectors) != len(blocks) {
		t.Errorf("expected one vector and candidate per block")
	}
	for _, c := range first.Candidates {
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("score %v out of range", c.Score)
		}
	}
	cut := first.Cutoffs
	if !(cut.Title >= cut.H1 && cut.H1 >= cut.H2 && cut.H2 >= cut.H3) {
		t.Errorf("cutoffs not monotonic: %s", cut)
	}
}

func TestMarkdown(t *testing.T) {
	blocks := numberedSections()
	ext := &backend.Extraction{
		Backend: "primary",
		Pages:   backend.PagesFromBlocks(blocks, map[int]string{1: staffList}),
	}

	md, err := FromExtraction(ext, 0).Markdown(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"1. Introduction", "1.1 Background", "| Name | Age | City |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Must to panic")
		}
	}()
	Must(Open("x.pdf").Backends("nope").Process(context.Background()))
}

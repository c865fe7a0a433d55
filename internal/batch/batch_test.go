package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/backend"
	"github.com/tsawler/pdfoutline/internal/logger"
	"github.com/tsawler/pdfoutline/internal/metrics"
	"github.com/tsawler/pdfoutline/model"
)

// pathSource fails for paths containing any of its markers and otherwise
// returns a small two-block document
type pathSource struct {
	name    string
	markers []string
}

func (s pathSource) Name() string { return s.name }

func (s pathSource) Extract(ctx context.Context, path string) (*backend.Extraction, error) {
	for _, m := range s.markers {
		if strings.Contains(path, m) {
			return nil, errors.New("unreadable")
		}
	}
	blocks := []model.TextBlock{
		{Text: "Quarterly Review", FontSize: 18, Bold: true, FontFamily: "Helvetica",
			BBox: model.NewBBox(72, 40, 300, 22), PageWidth: 612, PageHeight: 792, Page: 1},
		{Text: "Sales rose in the third quarter.", FontSize: 10, FontFamily: "Times",
			BBox: model.NewBBox(72, 90, 300, 12), PageWidth: 612, PageHeight: 792, Page: 1},
	}
	return &backend.Extraction{Pages: backend.PagesFromBlocks(blocks, nil)}, nil
}

// stallingSource blocks until its context is done
type stallingSource struct{}

func (stallingSource) Name() string { return "stalling" }

func (stallingSource) Extract(ctx context.Context, _ string) (*backend.Extraction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testTemplate() *pdfoutline.Processor {
	return pdfoutline.Open("").Sources(
		pathSource{name: "primary", markers: []string{"flaky", "broken"}},
		pathSource{name: "secondary", markers: []string{"broken"}},
	)
}

func readResult(t *testing.T, path string) (*model.Result, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return &res, string(data)
}

func TestRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	m := metrics.New()
	runner := NewRunner(Config{OutputDir: out, Workers: 2}, testTemplate(), logger.Nop(), m)

	files := []string{"in/good.pdf", "in/sub/good.pdf", "in/flaky.pdf", "in/broken.pdf"}
	summary, err := runner.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 4 || summary.Succeeded != 2 || summary.Degraded != 1 || summary.Failed != 1 {
		t.Errorf("summary = %d total, %d ok, %d degraded, %d failed; want 4, 2, 1, 1",
			summary.Total, summary.Succeeded, summary.Degraded, summary.Failed)
	}
	if summary.WriteErrors != 0 {
		t.Errorf("WriteErrors = %d, want 0", summary.WriteErrors)
	}
	if len(summary.Results) != 4 {
		t.Fatalf("len(Results) = %d, want 4", len(summary.Results))
	}

	byInput := make(map[string]*DocumentResult)
	for _, r := range summary.Results {
		byInput[r.Input] = r
	}

	t.Run("success", func(t *testing.T) {
		res, raw := readResult(t, filepath.Join(out, "good.json"))
		if !strings.HasPrefix(raw, "{\n  \"document_info\": {\n    \"filename\": \"good.pdf\"") {
			t.Errorf("output is not indented with two spaces:\n%s", raw)
		}
		if res.Metadata.ExtractionMethod != "primary" {
			t.Errorf("extraction method = %q, want primary", res.Metadata.ExtractionMethod)
		}
	})

	t.Run("duplicate stem", func(t *testing.T) {
		if got := byInput["in/sub/good.pdf"].Output; got != filepath.Join(out, "good-2.json") {
			t.Errorf("Output = %q, want good-2.json", got)
		}
		readResult(t, filepath.Join(out, "good-2.json"))
	})

	t.Run("fallback", func(t *testing.T) {
		r := byInput["in/flaky.pdf"]
		if r.Outcome != metrics.OutcomeDegraded {
			t.Errorf("Outcome = %q, want degraded", r.Outcome)
		}
		if !reflect.DeepEqual(r.Failures, []string{"primary"}) {
			t.Errorf("Failures = %v, want [primary]", r.Failures)
		}
		res, _ := readResult(t, filepath.Join(out, "flaky.json"))
		if res.Metadata.ExtractionMethod != "secondary" {
			t.Errorf("extraction method = %q, want secondary", res.Metadata.ExtractionMethod)
		}
	})

	t.Run("all backends failed", func(t *testing.T) {
		r := byInput["in/broken.pdf"]
		var all *backend.AllBackendsFailedError
		if !errors.As(r.ProcessErr, &all) {
			t.Fatalf("ProcessErr = %v, want *AllBackendsFailedError", r.ProcessErr)
		}
		if r.GetError() != nil {
			t.Errorf("GetError() = %v, want nil", r.GetError())
		}
		res, raw := readResult(t, filepath.Join(out, "broken.json"))
		if res.Metadata.ExtractionMethod != pdfoutline.ExtractionMethodNone {
			t.Errorf("extraction method = %q, want none", res.Metadata.ExtractionMethod)
		}
		if !strings.Contains(raw, `"sections": []`) {
			t.Errorf("minimal record should carry an empty sections array:\n%s", raw)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "batch.prom")
		if err := m.WriteTextfile(path); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{
			`pdfoutline_documents_processed_total{outcome="success"} 2`,
			`pdfoutline_documents_processed_total{outcome="degraded"} 1`,
			`pdfoutline_documents_processed_total{outcome="failed"} 1`,
			`pdfoutline_backend_failures_total{backend="primary"} 2`,
			`pdfoutline_backend_failures_total{backend="secondary"} 1`,
		} {
			if !strings.Contains(string(data), want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})
}

func TestRun_WriteError(t *testing.T) {
	out := t.TempDir()
	// a directory where the output file should go
	if err := os.Mkdir(filepath.Join(out, "good.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(Config{OutputDir: out, Workers: 1}, testTemplate(), nil, nil)
	summary, err := runner.Run(context.Background(), []string{"good.pdf", "other.pdf"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.WriteErrors != 1 {
		t.Errorf("WriteErrors = %d, want 1", summary.WriteErrors)
	}
	if summary.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", summary.Succeeded)
	}
	if _, err := os.Stat(filepath.Join(out, "other.json")); err != nil {
		t.Errorf("other.json not written: %v", err)
	}
}

func TestRun_OutputDirError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")

	runner := NewRunner(Config{OutputDir: filepath.Join(file, "out")}, testTemplate(), nil, nil)
	if _, err := runner.Run(context.Background(), []string{"a.pdf"}); err == nil {
		t.Error("expected an error when the output directory cannot be created")
	}
}

func TestRun_DocumentTimeout(t *testing.T) {
	out := t.TempDir()
	template := pdfoutline.Open("").Sources(stallingSource{})
	runner := NewRunner(Config{OutputDir: out, DocumentTimeout: 50 * time.Millisecond}, template, nil, nil)

	summary, err := runner.Run(context.Background(), []string{"slow.pdf"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	r := summary.Results[0]
	if !errors.Is(r.ProcessErr, context.DeadlineExceeded) {
		t.Errorf("ProcessErr = %v, want deadline exceeded", r.ProcessErr)
	}
	readResult(t, filepath.Join(out, "slow.json"))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(Config{OutputDir: t.TempDir()}, testTemplate(), nil, nil)
	_, err := runner.Run(ctx, []string{"a.pdf", "b.pdf"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestOutputNames(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{"distinct", []string{"a/report.pdf", "b/summary.PDF"}, []string{"report.json", "summary.json"}},
		{"shared stem", []string{"a/report.pdf", "b/report.pdf", "c/report.pdf"}, []string{"report.json", "report-2.json", "report-3.json"}},
		{"case collision", []string{"Report.pdf", "report.pdf"}, []string{"Report.json", "report-2.json"}},
		{"no stem", []string{".pdf"}, []string{"document.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputNames(tt.files); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OutputNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

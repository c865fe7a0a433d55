package layout

import (
	"fmt"
	"testing"

	"github.com/tsawler/pdfoutline/model"
)

func pagedBlocks(pages int) []model.TextBlock {
	var blocks []model.TextBlock
	add := func(s string, x, y float64, page int) {
		blocks = append(blocks, model.TextBlock{
			Text:       s,
			FontSize:   10,
			BBox:       model.NewBBox(x, y, 200, 12),
			PageWidth:  612,
			PageHeight: 792,
			Page:       page,
			Order:      len(blocks),
		})
	}
	for p := 1; p <= pages; p++ {
		add("ACME Corp Confidential", 72, 20, p)
		add(fmt.Sprintf("Section %d", p), 72, 100, p)
		add("Body text for the page.", 72, 130, p)
		add(fmt.Sprintf("Page %d", p), 290, 752, p)
	}
	return blocks
}

func TestRunningTextDetector_Detect(t *testing.T) {
	result := NewRunningTextDetector().Detect(pagedBlocks(3))

	if len(result.Headers) != 1 {
		t.Fatalf("expected 1 header, got %d", len(result.Headers))
	}
	if result.Headers[0].Text != "ACME Corp Confidential" || result.Headers[0].Type != Header {
		t.Errorf("unexpected header %+v", result.Headers[0])
	}
	if len(result.Headers[0].Pages) != 3 || result.Headers[0].Confidence != 1 {
		t.Errorf("unexpected header pages %+v", result.Headers[0])
	}

	if len(result.Footers) != 1 {
		t.Fatalf("expected 1 footer, got %d", len(result.Footers))
	}
	if !result.Footers[0].IsPageNumber || result.Footers[0].Text != "[Page Number]" {
		t.Errorf("footer should be a page number, got %+v", result.Footers[0])
	}
	if got := result.Summary(); got != "1 header(s), 1 footer(s)" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestRunningTextDetector_Filter(t *testing.T) {
	blocks := pagedBlocks(3)
	kept, result := NewRunningTextDetector().Filter(blocks)

	if !result.HasHeadersOrFooters() {
		t.Fatal("expected running text")
	}
	if len(kept) != 6 {
		t.Fatalf("expected 6 blocks kept, got %d", len(kept))
	}
	for i, b := range kept {
		if b.Order != i {
			t.Errorf("kept[%d].Order = %d", i, b.Order)
		}
		if b.Text == "ACME Corp Confidential" {
			t.Error("running header was not removed")
		}
	}
	if len(blocks) != 12 || blocks[1].Order != 1 {
		t.Error("input blocks were modified")
	}
}

func TestRunningTextDetector_KeepsBodyOccurrences(t *testing.T) {
	blocks := pagedBlocks(2)
	blocks = append(blocks, model.TextBlock{
		Text:       "ACME Corp Confidential",
		BBox:       model.NewBBox(72, 400, 200, 12),
		PageWidth:  612,
		PageHeight: 792,
		Page:       2,
		Order:      len(blocks),
	})

	kept, _ := NewRunningTextDetector().Filter(blocks)
	found := false
	for _, b := range kept {
		if b.Text == "ACME Corp Confidential" && b.BBox.Y == 400 {
			found = true
		}
	}
	if !found {
		t.Error("text in the body zone must be kept")
	}
}

func TestRunningTextDetector_SinglePage(t *testing.T) {
	blocks := pagedBlocks(1)
	kept, result := NewRunningTextDetector().Filter(blocks)

	if result.HasHeadersOrFooters() {
		t.Error("single page should not produce running text")
	}
	if len(kept) != len(blocks) {
		t.Errorf("expected all %d blocks kept, got %d", len(blocks), len(kept))
	}
	if got := result.Summary(); got != "no running text" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestIsPageNumberPattern(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"#", true},
		{"Page #", true},
		{"page # of #", true},
		{"- # -", true},
		{"Chapter #", false},
		{"Confidential", false},
	}

	for _, tt := range tests {
		if got := isPageNumberPattern(tt.in); got != tt.want {
			t.Errorf("isPageNumberPattern(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

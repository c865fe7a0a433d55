package features

import (
	"math"
	"sort"

	"github.com/tsawler/pdfoutline/model"
)

// Default body metrics used when a document carries no usable font metadata
const (
	defaultBodyFontSize = 12.0
	bucketWidth         = 0.5
)

// Baseline describes the body text of one document
type Baseline struct {
	// FontSize is the modal font size of blocks with known size
	FontSize float64

	// FontFamily is the modal font family ("" when no block has one)
	FontFamily string

	// LeftMargin is the modal left edge of blocks
	LeftMargin float64

	// LineGap is the modal vertical gap between consecutive blocks on a page
	LineGap float64
}

// ComputeBaseline derives the body-text baseline of a document. Blocks
// without usable geometry contribute only their font.
func ComputeBaseline(blocks []model.TextBlock) Baseline {
	sizes := make(map[int]int)
	families := make(map[string]int)
	margins := make(map[int]int)
	gaps := make(map[int]int)

	for i, b := range blocks {
		if b.HasFontSize() {
			sizes[bucket(b.FontSize)]++
		}
		if b.FontFamily != "" {
			families[b.FontFamily]++
		}
		if !b.HasGeometry() {
			continue
		}
		margins[int(math.Round(b.BBox.X))]++

		if i > 0 && blocks[i-1].Page == b.Page && blocks[i-1].HasGeometry() {
			if gap := blocks[i-1].BBox.VerticalGap(b.BBox); gap > bucketWidth {
				gaps[bucket(gap)]++
			}
		}
	}

	base := Baseline{
		FontSize:   defaultBodyFontSize,
		LeftMargin: 0,
	}
	if k, ok := modeInt(sizes); ok {
		base.FontSize = float64(k) * bucketWidth
	}
	base.FontFamily = modeString(families)
	if k, ok := modeInt(margins); ok {
		base.LeftMargin = float64(k)
	}
	base.LineGap = base.FontSize * 0.5
	if k, ok := modeInt(gaps); ok {
		base.LineGap = float64(k) * bucketWidth
	}
	return base
}

func bucket(v float64) int {
	return int(math.Round(v / bucketWidth))
}

// modeInt returns the most frequent key; ties go to the smallest key so the
// result does not depend on map iteration order.
func modeInt(counts map[int]int) (int, bool) {
	if len(counts) == 0 {
		return 0, false
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}

func modeString(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	for _, k := range keys {
		if best == "" || counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

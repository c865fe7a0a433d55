package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// nearTopFraction is 200px at 72 dpi on a US Letter page (792pt tall)
const nearTopFraction = 200.0 / 792.0

// maxWhitespaceRatio caps the whitespace-above ratio
const maxWhitespaceRatio = 4.0

// ErrMalformedFeature reports a block without usable font or geometry
// metadata. Extract recovers from it with neutral defaults; it is exposed only
// for diagnostics.
var ErrMalformedFeature = errors.New("malformed block features")

// Check returns an error wrapping ErrMalformedFeature when the block lacks font
// size, font family or page geometry. Non-finite numbers count as missing.
func Check(b model.TextBlock) error {
	switch {
	case !b.HasFontSize():
		return fmt.Errorf("block %d: no font size: %w", b.Order, ErrMalformedFeature)
	case b.FontFamily == "":
		return fmt.Errorf("block %d: no font family: %w", b.Order, ErrMalformedFeature)
	case !b.HasGeometry() || b.PageHeight <= 0:
		return fmt.Errorf("block %d: no usable geometry: %w", b.Order, ErrMalformedFeature)
	}
	return nil
}

// Extractor converts text blocks into feature vectors
type Extractor struct {
	keywords KeywordScorer
}

// NewExtractor creates an extractor using the default FrequencyKeywords signal
func NewExtractor() *Extractor {
	return &Extractor{keywords: NewFrequencyKeywords()}
}

// NewExtractorWithKeywords creates an extractor with a custom keyword signal.
// A nil scorer disables the signal.
func NewExtractorWithKeywords(k KeywordScorer) *Extractor {
	if k == nil {
		k = NoKeywords{}
	}
	return &Extractor{keywords: k}
}

// Extract returns one feature vector per block, in the same order.
// It never fails: blocks with missing metadata receive neutral defaults.
func (e *Extractor) Extract(blocks []model.TextBlock) []model.FeatureVector {
	if len(blocks) == 0 {
		return nil
	}

	base := ComputeBaseline(blocks)
	keywordScores := e.keywords.Score(blocks)

	vectors := make([]model.FeatureVector, len(blocks))
	for i, b := range blocks {
		geometry := b.HasGeometry()
		fv := model.FeatureVector{
			LeftMarginPx:           base.LeftMargin,
			CharLength:             text.Length(b.Text),
			Case:                   text.DetectCase(b.Text),
			HasTrailingPunctuation: text.HasTrailingPunctuation(b.Text),
			IsColored:              !b.Color.IsBlack(),
			Defaulted:              !b.HasFontMetadata() || !geometry,
		}

		if b.HasFontSize() {
			fv.SizeRatio = b.FontSize / base.FontSize
			fv.IsBold = b.Bold
		} else {
			fv.SizeRatio = 1.0
		}
		fv.FamilyChanged = b.FontFamily != "" && base.FontFamily != "" && b.FontFamily != base.FontFamily

		if geometry {
			fv.LeftMarginPx = b.BBox.X
		}
		if geometry && b.PageHeight > 0 {
			fv.YPct = clamp(b.BBox.Y/b.PageHeight, 0, 1)
			fv.NearPageTop = fv.YPct <= nearTopFraction
		} else {
			fv.YPct = 0.5
		}

		fv.WhitespaceAboveRatio = whitespaceAbove(blocks, i, base)
		fv.IndentLevel = indentLevel(b, base)
		fv.IsIsolated = isIsolated(blocks, i)

		if i < len(keywordScores) {
			fv.KeywordScore = clamp(keywordScores[i], 0, 1)
		}

		vectors[i] = fv
	}
	return vectors
}

// whitespaceAbove measures the gap above block i relative to the modal gap.
// The first block of a page has no gap to measure (the page margin is not
// whitespace set by the author) and takes the neutral ratio 1.
func whitespaceAbove(blocks []model.TextBlock, i int, base Baseline) float64 {
	if i == 0 || blocks[i-1].Page != blocks[i].Page || base.LineGap <= 0 {
		return 1.0
	}
	if !blocks[i-1].HasGeometry() || !blocks[i].HasGeometry() {
		return 1.0
	}
	gap := blocks[i-1].BBox.VerticalGap(blocks[i].BBox)
	return clamp(gap/base.LineGap, 0, maxWhitespaceRatio)
}

// indentLevel counts indentation steps of two body-font ems from the body margin
func indentLevel(b model.TextBlock, base Baseline) int {
	unit := 2 * base.FontSize
	if unit <= 0 || !b.HasGeometry() {
		return 0
	}
	level := int(math.Round((b.BBox.X - base.LeftMargin) / unit))
	if level < 0 {
		return 0
	}
	return level
}

type styleKey struct {
	size   int
	bold   bool
	family string
}

func styleOf(b model.TextBlock) styleKey {
	size := 0
	if b.HasFontSize() {
		size = bucket(b.FontSize)
	}
	return styleKey{size: size, bold: b.Bold, family: b.FontFamily}
}

// isIsolated reports whether neither same-page neighbour shares the block's style
func isIsolated(blocks []model.TextBlock, i int) bool {
	s := styleOf(blocks[i])
	if i > 0 && blocks[i-1].Page == blocks[i].Page && styleOf(blocks[i-1]) == s {
		return false
	}
	if i+1 < len(blocks) && blocks[i+1].Page == blocks[i].Page && styleOf(blocks[i+1]) == s {
		return false
	}
	return true
}

// clamp bounds v to [lo, hi]; NaN maps to lo
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

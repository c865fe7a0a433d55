package model

import (
	"fmt"
	"math"
)

// Color is an RGB text colour. The zero value is the default black.
type Color struct {
	R, G, B uint8
}

// IsBlack reports whether the colour is black or close enough to pass for it
// after anti-aliasing and colour-space conversion.
func (c Color) IsBlack() bool {
	return c.R < 32 && c.G < 32 && c.B < 32
}

// String returns the colour in #rrggbb form
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// TextBlock is a contiguous unit of extracted text with font and position
// metadata. Blocks are immutable once produced by a backend.
type TextBlock struct {
	// Text is the block content
	Text string

	// FontSize in points; zero when the backend could not measure it
	FontSize float64

	// Bold is true when the font is a bold face
	Bold bool

	// FontFamily is the font family without subset prefix or style suffix;
	// empty when unknown
	FontFamily string

	// Color is the fill colour of the text
	Color Color

	// BBox is the block's bounding box (top-left origin)
	BBox BBox

	// PageWidth and PageHeight are the dimensions of the block's page
	PageWidth  float64
	PageHeight float64

	// Page is the 1-based page number
	Page int

	// Order is the block's index in document reading order
	Order int
}

// HasFontMetadata reports whether the backend supplied both a font size and
// a font family for the block.
func (b TextBlock) HasFontMetadata() bool {
	return b.HasFontSize() && b.FontFamily != ""
}

// HasFontSize reports whether the block carries a positive, finite font size
func (b TextBlock) HasFontSize() bool {
	return b.FontSize > 0 && !math.IsInf(b.FontSize, 1)
}

// HasGeometry reports whether the block's box and page height are finite
// numbers. A zero page height still counts as finite.
func (b TextBlock) HasGeometry() bool {
	for _, v := range []float64{b.BBox.X, b.BBox.Y, b.BBox.Width, b.BBox.Height, b.PageHeight} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CasePattern classifies the letter case of a block's text
type CasePattern int

const (
	CaseMixed CasePattern = iota
	CaseTitle
	CaseAllCaps
)

// String returns a string representation of the case pattern
func (c CasePattern) String() string {
	switch c {
	case CaseAllCaps:
		return "ALL_CAPS"
	case CaseTitle:
		return "TITLE_CASE"
	default:
		return "MIXED"
	}
}

// FeatureVector holds the normalised features derived from one block.
type FeatureVector struct {
	// SizeRatio is the block font size divided by the modal body font size
	SizeRatio float64

	IsBold        bool
	FamilyChanged bool
	IsColored     bool

	// YPct is the vertical position of the block's top edge as a fraction
	// of the page height
	YPct float64

	LeftMarginPx float64

	// WhitespaceAboveRatio is the gap above the block divided by the modal
	// line gap
	WhitespaceAboveRatio float64

	NearPageTop bool
	CharLength  int
	Case        CasePattern

	HasTrailingPunctuation bool

	// KeywordScore is the lexical heading signal in [0,1]
	KeywordScore float64

	IndentLevel int
	IsIsolated  bool

	// Defaulted is true when font metadata was missing and neutral
	// defaults were substituted
	Defaulted bool
}

// HeadingCandidate carries the scores computed for one block.
type HeadingCandidate struct {
	// Index is the position of the block in the document's block slice
	Index int
	Block TextBlock

	Font     float64
	Position float64
	Text     float64
	Layout   float64

	// Score is the weighted composite in [0,1]
	Score float64

	// Level is the tentative level, corrected in place during hierarchy repair
	Level Level
}

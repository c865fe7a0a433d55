package backend

import (
	"cmp"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
)

// Fragment is a positioned run of text as reported by a PDF library, in
// top-left page coordinates.
type Fragment struct {
	Text string

	// X, Y is the top-left corner of the run
	X, Y   float64
	Width  float64
	Height float64

	// Font is the font name as reported by the library, possibly with a
	// subset prefix ("ABCDEF+Times-Bold")
	Font string
	Size float64
}

// bottom approximates the baseline
func (f Fragment) bottom() float64 { return f.Y + f.Height }
func (f Fragment) right() float64  { return f.X + f.Width }

// GroupConfig holds the thresholds used to assemble fragments into lines
// and lines into blocks
type GroupConfig struct {
	// LineTolerance is the baseline difference, as a fraction of the average
	// fragment height, within which fragments share a line.
	// Default: 0.5
	LineTolerance float64

	// WordGap is the horizontal gap, as a fraction of the font size, above
	// which a space is inserted between fragments.
	// Default: 0.15
	WordGap float64

	// ColumnGap is the horizontal gap, as a fraction of the font size, above
	// which the raw text renders the gap as a run of spaces.
	// Default: 1.0
	ColumnGap float64

	// BlockSpacing is the largest vertical gap between two lines of one
	// block, as a multiple of the upper line's height.
	// Default: 0.8
	BlockSpacing float64
}

// DefaultGroupConfig returns the default grouping thresholds
func DefaultGroupConfig() GroupConfig {
	return GroupConfig{
		LineTolerance: 0.5,
		WordGap:       0.15,
		ColumnGap:     1.0,
		BlockSpacing:  0.8,
	}
}

// textLine is a set of fragments sharing a baseline, sorted left to right
type textLine struct {
	fragments []Fragment
	text      string
	raw       string
	bbox      model.BBox
	font      string
	size      float64
}

// Group assembles the fragments of one page into text blocks and the
// page's raw text. Blocks carry page-local geometry; Order is left at 0 and
// is assigned when the document's blocks are collected.
func (c GroupConfig) Group(fragments []Fragment, page int, width, height float64) ([]model.TextBlock, string) {
	lines := c.groupIntoLines(fragments)
	if len(lines) == 0 {
		return nil, ""
	}

	raw := make([]string, len(lines))
	for i, l := range lines {
		raw[i] = l.raw
	}

	var blocks []model.TextBlock
	var current []textLine
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, buildBlock(current, page, width, height))
			current = nil
		}
	}
	for _, l := range lines {
		if len(current) > 0 && !c.continuesBlock(current[len(current)-1], l) {
			flush()
		}
		current = append(current, l)
	}
	flush()

	return blocks, strings.Join(raw, "\n")
}

// groupIntoLines sorts fragments top to bottom and clusters them by
// baseline. Stream order is kept for fragments at the same position.
func (c GroupConfig) groupIntoLines(fragments []Fragment) []textLine {
	var frags []Fragment
	totalHeight := 0.0
	for _, f := range fragments {
		if f.Text == "" {
			continue
		}
		if f.Height <= 0 {
			f.Height = max(f.Size, 1)
		}
		if f.Width <= 0 {
			f.Width = float64(utf8.RuneCountInString(f.Text)) * max(f.Size, 1) * 0.5
		}
		totalHeight += f.Height
		frags = append(frags, f)
	}
	if len(frags) == 0 {
		return nil
	}

	tolerance := totalHeight / float64(len(frags)) * c.LineTolerance
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].bottom() < frags[j].bottom()
	})

	var lines []textLine
	var current []Fragment
	sum := 0.0
	for _, f := range frags {
		if len(current) > 0 && math.Abs(f.bottom()-sum/float64(len(current))) > tolerance {
			lines = append(lines, c.buildLine(current))
			current = nil
			sum = 0
		}
		current = append(current, f)
		sum += f.bottom()
	}
	lines = append(lines, c.buildLine(current))

	// drop lines made only of whitespace
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l.text) != "" {
			out = append(out, l)
		}
	}
	return out
}

// buildLine orders a line's fragments left to right and assembles both its
// block text (single spaces) and its raw text (tabs and column gaps kept).
func (c GroupConfig) buildLine(frags []Fragment) textLine {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].X < frags[j].X
	})

	var text, raw strings.Builder
	var bbox model.BBox
	fontRunes := make(map[string]int)
	sizeRunes := make(map[float64]int)

	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			gap := f.X - prev.right()
			size := max(prev.Size, f.Size, 1)
			switch {
			case gap > c.ColumnGap*size:
				n := min(max(2, int(math.Round(gap/(0.5*size)))), 12)
				raw.WriteString(strings.Repeat(" ", n))
				text.WriteByte(' ')
			case gap > c.WordGap*size && !endsWithSpace(prev.Text) && !startsWithSpace(f.Text):
				raw.WriteByte(' ')
				text.WriteByte(' ')
			}
		}
		raw.WriteString(f.Text)
		text.WriteString(f.Text)

		bbox = bbox.Union(model.NewBBox(f.X, f.Y, f.Width, f.Height))
		n := utf8.RuneCountInString(strings.TrimSpace(f.Text))
		fontRunes[f.Font] += n
		sizeRunes[f.Size] += n
	}

	return textLine{
		fragments: frags,
		text:      strings.Join(strings.Fields(text.String()), " "),
		raw:       strings.TrimRight(raw.String(), " "),
		bbox:      bbox,
		font:      dominant(fontRunes),
		size:      dominant(sizeRunes),
	}
}

// continuesBlock reports whether next belongs to the same block as prev:
// same style and a vertical gap no larger than BlockSpacing line heights.
func (c GroupConfig) continuesBlock(prev, next textLine) bool {
	if math.Abs(prev.size-next.size) >= 0.5 {
		return false
	}
	if IsBoldFont(prev.font) != IsBoldFont(next.font) {
		return false
	}
	if FontFamily(prev.font) != FontFamily(next.font) {
		return false
	}
	return prev.bbox.VerticalGap(next.bbox) <= c.BlockSpacing*prev.bbox.Height
}

func buildBlock(lines []textLine, page int, width, height float64) model.TextBlock {
	texts := make([]string, len(lines))
	bbox := lines[0].bbox
	for i, l := range lines {
		texts[i] = l.text
		bbox = bbox.Union(l.bbox)
	}
	font := lines[0].font
	return model.TextBlock{
		Text:       strings.Join(texts, " "),
		FontSize:   lines[0].size,
		Bold:       IsBoldFont(font),
		FontFamily: FontFamily(font),
		BBox:       bbox,
		PageWidth:  width,
		PageHeight: height,
		Page:       page,
	}
}

// dominant returns the key with the highest count, breaking ties by the
// smallest key so results do not depend on map order
func dominant[K cmp.Ordered](counts map[K]int) K {
	var best K
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\t")
}

func startsWithSpace(s string) bool {
	return strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\t")
}

// IsBoldFont reports whether a font name denotes a bold face
func IsBoldFont(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bold") ||
		strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy") ||
		strings.Contains(lower, "semibold") ||
		strings.Contains(lower, "demibold")
}

// FontFamily strips a font name down to its family: the subset prefix and
// any style suffix after '-' or ',' are removed ("ABCDEF+Times-Bold" gives
// "Times").
func FontFamily(name string) string {
	if isSubsetFont(name) {
		name = name[7:]
	}
	if i := strings.IndexAny(name, "-,"); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// isSubsetFont checks for the six upper-case letters and '+' that prefix
// embedded font subsets
func isSubsetFont(name string) bool {
	if len(name) < 8 {
		return false
	}
	for i := 0; i < 6; i++ {
		if name[i] < 'A' || name[i] > 'Z' {
			return false
		}
	}
	return name[6] == '+'
}

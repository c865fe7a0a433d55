package layout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// RegionType indicates whether running text sits at the top or bottom of a page
type RegionType int

const (
	Header RegionType = iota
	Footer
)

func (r RegionType) String() string {
	if r == Header {
		return "header"
	}
	return "footer"
}

// RunningRegion is a block of text repeated across pages at a consistent
// position, such as a running header, a footer or a page number.
type RunningRegion struct {
	Type RegionType

	// Text is the representative text ("[Page Number]" for page numbers)
	Text string

	IsPageNumber bool

	// Pages lists the page numbers the region was found on
	Pages []int

	// Confidence is the fraction of pages carrying the region, in [0,1]
	Confidence float64

	key string
}

// RunningTextConfig holds configuration for running header/footer detection
type RunningTextConfig struct {
	// HeaderRegionHeight is the height from the top of the page considered
	// as the header zone.
	// Default: 72 points (1 inch)
	HeaderRegionHeight float64

	// FooterRegionHeight is the height from the bottom of the page considered
	// as the footer zone.
	// Default: 72 points (1 inch)
	FooterRegionHeight float64

	// MinOccurrenceRatio is the minimum fraction of pages a text must appear
	// on to be considered running text.
	// Default: 0.5
	MinOccurrenceRatio float64

	// PositionTolerance is the maximum Y difference, in points, for two
	// blocks to share a position.
	// Default: 5
	PositionTolerance float64

	// XPositionTolerance is the maximum X difference, in points.
	// Default: 10
	XPositionTolerance float64

	// MinPages is the minimum number of pages required for detection.
	// Default: 2
	MinPages int
}

// DefaultRunningTextConfig returns sensible default configuration
func DefaultRunningTextConfig() RunningTextConfig {
	return RunningTextConfig{
		HeaderRegionHeight: 72.0,
		FooterRegionHeight: 72.0,
		MinOccurrenceRatio: 0.5,
		PositionTolerance:  5.0,
		XPositionTolerance: 10.0,
		MinPages:           2,
	}
}

// RunningTextDetector finds page furniture repeated across pages
type RunningTextDetector struct {
	config RunningTextConfig
}

// NewRunningTextDetector creates a detector with default configuration
func NewRunningTextDetector() *RunningTextDetector {
	return &RunningTextDetector{
		config: DefaultRunningTextConfig(),
	}
}

// NewRunningTextDetectorWithConfig creates a detector with custom configuration
func NewRunningTextDetectorWithConfig(config RunningTextConfig) *RunningTextDetector {
	return &RunningTextDetector{
		config: config,
	}
}

// RunningTextResult contains the detected regions
type RunningTextResult struct {
	Headers []RunningRegion
	Footers []RunningRegion

	config RunningTextConfig
}

var digitRun = regexp.MustCompile(`\d+`)

// Detect analyzes the blocks of a whole document
func (d *RunningTextDetector) Detect(blocks []model.TextBlock) *RunningTextResult {
	pages := make(map[int]bool)
	for _, b := range blocks {
		pages[b.Page] = true
	}
	if len(pages) < d.config.MinPages {
		return &RunningTextResult{config: d.config}
	}

	return &RunningTextResult{
		Headers: d.findRepeating(d.candidates(blocks, Header), len(pages), Header),
		Footers: d.findRepeating(d.candidates(blocks, Footer), len(pages), Footer),
		config:  d.config,
	}
}

// Filter returns the blocks that are not running text, with Order
// renumbered to stay contiguous. The input is not modified.
func (d *RunningTextDetector) Filter(blocks []model.TextBlock) ([]model.TextBlock, *RunningTextResult) {
	result := d.Detect(blocks)
	if !result.HasHeadersOrFooters() {
		return blocks, result
	}

	kept := make([]model.TextBlock, 0, len(blocks))
	for _, b := range blocks {
		if result.Contains(b) {
			continue
		}
		b.Order = len(kept)
		kept = append(kept, b)
	}
	return kept, result
}

type runningCandidate struct {
	block model.TextBlock
	y     float64 // distance from the top for headers, from the bottom for footers
}

func (d *RunningTextDetector) candidates(blocks []model.TextBlock, region RegionType) []runningCandidate {
	var out []runningCandidate
	for _, b := range blocks {
		if y, ok := zoneOffset(b, region, d.config); ok {
			out = append(out, runningCandidate{block: b, y: y})
		}
	}
	return out
}

// zoneOffset returns the block's distance from the page edge of region when
// it lies inside that zone.
func zoneOffset(b model.TextBlock, region RegionType, config RunningTextConfig) (float64, bool) {
	if b.PageHeight <= 0 {
		return 0, false
	}
	if region == Header {
		return b.BBox.Top(), b.BBox.Top() <= config.HeaderRegionHeight
	}
	fromBottom := b.PageHeight - b.BBox.Bottom()
	return fromBottom, fromBottom <= config.FooterRegionHeight
}

func (d *RunningTextDetector) findRepeating(cands []runningCandidate, totalPages int, region RegionType) []RunningRegion {
	if len(cands) == 0 {
		return nil
	}

	groups := make(map[string][]runningCandidate)
	for _, c := range cands {
		key := normalizeForComparison(c.block.Text)
		groups[key] = append(groups[key], c)
	}

	minOccurrences := max(2, int(float64(totalPages)*d.config.MinOccurrenceRatio))

	var regions []RunningRegion
	for key, group := range groups {
		// Very short text that isn't a page number is likely a stray glyph
		if len(key) <= 2 && !isPageNumberPattern(key) {
			continue
		}

		pageSet := make(map[int]bool)
		for _, c := range group {
			pageSet[c.block.Page] = true
		}
		if len(pageSet) < minOccurrences || !d.hasConsistentPosition(group) {
			continue
		}

		isPageNum := isPageNumberPattern(key) || containsPageSequence(group)
		representative := text.Normalize(group[0].block.Text)
		if isPageNum {
			representative = "[Page Number]"
		}

		pageList := make([]int, 0, len(pageSet))
		for p := range pageSet {
			pageList = append(pageList, p)
		}
		sort.Ints(pageList)

		regions = append(regions, RunningRegion{
			Type:         region,
			Text:         representative,
			IsPageNumber: isPageNum,
			Pages:        pageList,
			Confidence:   float64(len(pageSet)) / float64(totalPages),
			key:          key,
		})
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Confidence != regions[j].Confidence {
			return regions[i].Confidence > regions[j].Confidence
		}
		return regions[i].key < regions[j].key
	})
	return regions
}

func (d *RunningTextDetector) hasConsistentPosition(group []runningCandidate) bool {
	if len(group) < 2 {
		return false
	}
	ref := group[0]
	for _, c := range group[1:] {
		if abs(c.y-ref.y) > d.config.PositionTolerance {
			return false
		}
		if abs(c.block.BBox.X-ref.block.BBox.X) > d.config.XPositionTolerance {
			return false
		}
	}
	return true
}

// normalizeForComparison replaces digit runs so "Page 3" and "Page 4" match
func normalizeForComparison(s string) string {
	return digitRun.ReplaceAllString(text.Normalize(s), "#")
}

var pageNumberPatterns = []string{
	"#", "page #", "- # -", "# of #", "page # of #", "#/#", "p. #", "p.#", "pg #", "pg. #",
}

func isPageNumberPattern(normalized string) bool {
	trimmed := strings.TrimSpace(normalized)
	for _, p := range pageNumberPatterns {
		if strings.EqualFold(trimmed, p) {
			return true
		}
	}
	return false
}

// containsPageSequence reports whether the numbers in a group mostly
// increase by one, as page numbers do.
func containsPageSequence(group []runningCandidate) bool {
	var numbers []int
	for _, c := range group {
		for _, m := range digitRun.FindAllString(c.block.Text, -1) {
			var n int
			if _, err := fmt.Sscanf(m, "%d", &n); err == nil {
				numbers = append(numbers, n)
			}
		}
	}
	if len(numbers) < 2 {
		return false
	}

	sort.Ints(numbers)
	sequential := 0
	for i := 1; i < len(numbers); i++ {
		if numbers[i]-numbers[i-1] == 1 {
			sequential++
		}
	}
	return sequential >= len(numbers)/2
}

// Contains reports whether b matches a detected header or footer
func (r *RunningTextResult) Contains(b model.TextBlock) bool {
	if r == nil {
		return false
	}
	key := normalizeForComparison(b.Text)
	for _, regions := range [][]RunningRegion{r.Headers, r.Footers} {
		for _, reg := range regions {
			if reg.key != key || !containsPage(reg.Pages, b.Page) {
				continue
			}
			if _, ok := zoneOffset(b, reg.Type, r.config); ok {
				return true
			}
		}
	}
	return false
}

// HasHeadersOrFooters returns true if any running text was detected
func (r *RunningTextResult) HasHeadersOrFooters() bool {
	return r != nil && (len(r.Headers) > 0 || len(r.Footers) > 0)
}

// Summary returns a one-line description for debug logs
func (r *RunningTextResult) Summary() string {
	if !r.HasHeadersOrFooters() {
		return "no running text"
	}
	return fmt.Sprintf("%d header(s), %d footer(s)", len(r.Headers), len(r.Footers))
}

func containsPage(pages []int, page int) bool {
	i := sort.SearchInts(pages, page)
	return i < len(pages) && pages[i] == page
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

package calibrate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tsawler/pdfoutline/model"
)

// ErrDegenerate reports a score distribution with no separating gap
var ErrDegenerate = errors.New("degenerate score distribution")

// maxLevels is the number of heading bands below the Title
const maxLevels = 3

// Config holds the calibration parameters
type Config struct {
	// MinGap is the smallest score gap that can separate two bands.
	// Default: 0.05
	MinGap float64

	// RelativeGap is the fraction of the largest eligible gap a gap must reach
	// to count as a band boundary.
	// Default: 0.25
	RelativeGap float64

	// MinBandGap collapses adjacent cutoffs closer than this value.
	// Default: 0.05
	MinBandGap float64

	// TitleMargin is how far the Title candidate must score above the top of
	// the H1 band.
	// Default: 0.12
	TitleMargin float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MinGap:      0.05,
		RelativeGap: 0.25,
		MinBandGap:  0.05,
		TitleMargin: 0.12,
	}
}

// withDefaults replaces non-positive parameters with their defaults
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinGap <= 0 {
		c.MinGap = d.MinGap
	}
	if c.RelativeGap <= 0 {
		c.RelativeGap = d.RelativeGap
	}
	if c.MinBandGap <= 0 {
		c.MinBandGap = d.MinBandGap
	}
	if c.TitleMargin <= 0 {
		c.TitleMargin = d.TitleMargin
	}
	return c
}

// Cutoffs are the score thresholds calibrated for one document.
// Title >= H1 >= H2 >= H3 always holds.
type Cutoffs struct {
	Title float64
	H1    float64
	H2    float64
	H3    float64

	// TitleIndex is the Index of the accepted Title candidate, or -1
	TitleIndex int

	// DemotedIndex is the Index of a Title candidate rejected for lack of
	// margin, or -1. The outline places it at H1 whatever its score.
	DemotedIndex int

	// Levels is the number of heading bands found (0..3). Unused levels copy
	// the cutoff of the level above.
	Levels int

	// Degenerate is true when no separating gap was found
	Degenerate bool

	// Separation is the mean size of the separating gaps
	Separation float64
}

// HasTitle reports whether a Title candidate was accepted
func (c Cutoffs) HasTitle() bool {
	return c.TitleIndex >= 0
}

// Classify maps a score to a heading level or Body. The Title is assigned by
// index, never by score.
func (c Cutoffs) Classify(score float64) model.Level {
	switch {
	case c.Levels >= 1 && score >= c.H1:
		return model.LevelH1
	case c.Levels >= 2 && score >= c.H2:
		return model.LevelH2
	case c.Levels >= 3 && score >= c.H3:
		return model.LevelH3
	}
	return model.LevelBody
}

// Err returns ErrDegenerate for a degenerate distribution, nil otherwise
func (c Cutoffs) Err() error {
	if c.Degenerate {
		return ErrDegenerate
	}
	return nil
}

// String returns a compact description for debug logs
func (c Cutoffs) String() string {
	return fmt.Sprintf("title=%.3f h1=%.3f h2=%.3f h3=%.3f levels=%d degenerate=%t demoted=%d", c.Title, c.H1, c.H2, c.H3, c.Levels, c.Degenerate, c.DemotedIndex)
}

// Calibrate computes the cutoffs for one document's candidates
func Calibrate(cands []model.HeadingCandidate, cfg Config) Cutoffs {
	cfg = cfg.withDefaults()

	title := titleCandidate(cands)
	if title < 0 {
		b := computeBands(scoresOf(cands, -1), cfg)
		return b.cutoffs(1.0, -1)
	}

	titleScore := cands[title].Score
	rest := scoresOf(cands, title)
	b := computeBands(rest, cfg)

	if titleScore-b.h1Top(rest) >= cfg.TitleMargin {
		return b.cutoffs(titleScore, cands[title].Index)
	}

	b = computeBands(scoresOf(cands, -1), cfg)
	cut := b.cutoffs(1.0, -1)
	cut.DemotedIndex = cands[title].Index
	return cut
}

// titleCandidate returns the slice position of the highest-scoring candidate
// on the first page, ties going to the earliest block, or -1.
func titleCandidate(cands []model.HeadingCandidate) int {
	if len(cands) == 0 {
		return -1
	}

	firstPage := cands[0].Block.Page
	for _, c := range cands[1:] {
		if c.Block.Page < firstPage {
			firstPage = c.Block.Page
		}
	}

	best := -1
	for i, c := range cands {
		if c.Block.Page != firstPage {
			continue
		}
		if best < 0 || c.Score > cands[best].Score ||
			(c.Score == cands[best].Score && c.Block.Order < cands[best].Block.Order) {
			best = i
		}
	}
	return best
}

func scoresOf(cands []model.HeadingCandidate, skip int) []float64 {
	scores := make([]float64, 0, len(cands))
	for i, c := range cands {
		if i != skip {
			scores = append(scores, c.Score)
		}
	}
	return scores
}

// bands is the outcome of gap detection over one score distribution
type bands struct {
	cuts       []float64
	degenerate bool
	separation float64
	fill       float64
}

// h1Top returns the highest score reaching the H1 cutoff, or the cutoff
// itself when no score does.
func (b bands) h1Top(scores []float64) float64 {
	h1 := b.fill
	if len(b.cuts) > 0 {
		h1 = b.cuts[0]
	}
	top := h1
	for _, s := range scores {
		if s >= h1 && s > top {
			top = s
		}
	}
	return top
}

func (b bands) cutoffs(title float64, titleIndex int) Cutoffs {
	c := Cutoffs{
		Title:        title,
		TitleIndex:   titleIndex,
		DemotedIndex: -1,
		Levels:       len(b.cuts),
		Degenerate:   b.degenerate,
		Separation:   b.separation,
	}

	levels := []*float64{&c.H1, &c.H2, &c.H3}
	prev := b.fill
	for i, p := range levels {
		if i < len(b.cuts) {
			prev = b.cuts[i]
		}
		*p = prev
	}
	if c.Title < c.H1 {
		c.Title = c.H1
	}
	return c
}

type gap struct {
	pos  int
	size float64
	mid  float64
}

// computeBands finds up to three separating gaps in scores
func computeBands(scores []float64, cfg Config) bands {
	if len(scores) == 0 {
		return bands{degenerate: true}
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	median := medianOf(sorted)

	var candidates []gap
	largest := 0.0
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i+1] < median {
			break
		}
		size := sorted[i] - sorted[i+1]
		candidates = append(candidates, gap{pos: i, size: size, mid: (sorted[i] + sorted[i+1]) / 2})
		largest = max(largest, size)
	}

	threshold := max(cfg.MinGap, cfg.RelativeGap*largest)
	var eligible []gap
	for _, g := range candidates {
		if g.size >= threshold {
			eligible = append(eligible, g)
		}
	}

	if len(eligible) == 0 {
		return bands{degenerate: true, fill: min(1.0, sorted[0]+cfg.MinGap)}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].size != eligible[j].size {
			return eligible[i].size > eligible[j].size
		}
		return eligible[i].pos < eligible[j].pos
	})
	if len(eligible) > maxLevels {
		eligible = eligible[:maxLevels]
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].mid > eligible[j].mid
	})

	// Collapse cutoffs too close to the one above; the lower band is dropped.
	kept := []gap{eligible[0]}
	for _, g := range eligible[1:] {
		if kept[len(kept)-1].mid-g.mid >= cfg.MinBandGap {
			kept = append(kept, g)
		}
	}

	b := bands{}
	total := 0.0
	for _, g := range kept {
		b.cuts = append(b.cuts, g.mid)
		total += g.size
	}
	b.separation = total / float64(len(kept))
	return b
}

func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

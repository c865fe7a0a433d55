package scoring

import (
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// Weights holds the contribution of each sub-score to the composite
type Weights struct {
	Font     float64
	Position float64
	Text     float64
	Layout   float64
}

// DefaultWeights returns the standard weighting
func DefaultWeights() Weights {
	return Weights{
		Font:     0.40,
		Position: 0.25,
		Text:     0.20,
		Layout:   0.15,
	}
}

func (w Weights) sum() float64 {
	return w.Font + w.Position + w.Text + w.Layout
}

// normalized scales the weights so they sum to one. Negative weights are
// treated as zero; an all-zero set falls back to the defaults.
func (w Weights) normalized() Weights {
	w.Font = max(w.Font, 0)
	w.Position = max(w.Position, 0)
	w.Text = max(w.Text, 0)
	w.Layout = max(w.Layout, 0)

	total := w.sum()
	if total <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Font:     w.Font / total,
		Position: w.Position / total,
		Text:     w.Text / total,
		Layout:   w.Layout / total,
	}
}

// Provisional headings are the reference points for the indent score
const (
	provisionalMaxLength = 80
	provisionalMinRatio  = 1.05
)

// Engine computes heading candidates from feature vectors
type Engine struct {
	weights Weights
}

// NewEngine creates an engine with the default weights
func NewEngine() *Engine {
	return &Engine{weights: DefaultWeights()}
}

// NewEngineWithWeights creates an engine with custom weights. Weights are
// normalised to sum to one so composite scores stay in [0,1].
func NewEngineWithWeights(w Weights) *Engine {
	return &Engine{weights: w.normalized()}
}

// Weights returns the weights in use
func (e *Engine) Weights() Weights {
	return e.weights
}

// Score returns one candidate per block, in document order. vectors must be
// parallel to blocks; entries beyond the shorter slice are ignored. The
// candidates' Level is left as Body.
func (e *Engine) Score(blocks []model.TextBlock, vectors []model.FeatureVector) []model.HeadingCandidate {
	n := min(len(blocks), len(vectors))
	if n == 0 {
		return nil
	}

	cands := make([]model.HeadingCandidate, n)
	lastHeadingIndent := -1

	for i := 0; i < n; i++ {
		fv := vectors[i]
		b := blocks[i]

		c := model.HeadingCandidate{
			Index:    i,
			Block:    b,
			Font:     FontScore(fv),
			Position: PositionScore(fv),
			Text:     TextScore(b.Text, fv),
			Layout:   layoutScore(fv, lastHeadingIndent),
			Level:    model.LevelBody,
		}
		c.Score = clamp(e.weights.Font*c.Font+
			e.weights.Position*c.Position+
			e.weights.Text*c.Text+
			e.weights.Layout*c.Layout, 0, 1)

		if isProvisionalHeading(fv) {
			lastHeadingIndent = fv.IndentLevel
		}
		cands[i] = c
	}
	return cands
}

// FontScore rewards size above the body font, bold, a family change and colour
func FontScore(fv model.FeatureVector) float64 {
	s := ramp(fv.SizeRatio, 1.0, 2.5)
	if fv.IsBold {
		s += 0.25
	}
	if fv.FamilyChanged {
		s += 0.10
	}
	if fv.IsColored {
		s += 0.10
	}
	return clamp(s, 0, 1)
}

// PositionScore rewards blocks high on the page, near the left margin and
// preceded by extra whitespace.
func PositionScore(fv model.FeatureVector) float64 {
	s := 0.30*(1-ramp(fv.YPct, 0.05, 0.90)) +
		0.20*(1-ramp(fv.LeftMarginPx, 50, 250)) +
		0.35*ramp(fv.WhitespaceAboveRatio, 1.0, 3.0) +
		0.15*boolScore(fv.NearPageTop)
	return clamp(s, 0, 1)
}

// TextScore rewards short lines, capitalisation, missing sentence punctuation
// and the keyword signal.
func TextScore(s string, fv model.FeatureVector) float64 {
	length := plateau(float64(fv.CharLength), 1, 5, 80, 200)

	var caseScore float64
	switch fv.Case {
	case model.CaseAllCaps:
		caseScore = 1.0
	case model.CaseTitle:
		caseScore = 0.8
	default:
		caseScore = 0.2
	}

	punct := 1.0
	switch {
	case fv.HasTrailingPunctuation:
		punct = 0
	case text.EndsWithColon(s):
		punct = 0.7
	}
	if text.SentenceBreaks(s) > 0 {
		punct *= 0.5
	}

	return clamp(0.35*length+0.25*caseScore+0.25*punct+0.15*clamp(fv.KeywordScore, 0, 1), 0, 1)
}

// layoutScore rewards isolation and penalises indentation deeper than the
// last provisional heading.
func layoutScore(fv model.FeatureVector, lastHeadingIndent int) float64 {
	indent := 1.0
	if lastHeadingIndent >= 0 && fv.IndentLevel > lastHeadingIndent {
		indent = max(0.5, 1-0.25*float64(fv.IndentLevel-lastHeadingIndent))
	}
	return clamp(0.6*boolScore(fv.IsIsolated)+0.4*indent, 0, 1)
}

func isProvisionalHeading(fv model.FeatureVector) bool {
	return fv.IsIsolated && fv.CharLength <= provisionalMaxLength &&
		(fv.IsBold || fv.SizeRatio > provisionalMinRatio)
}

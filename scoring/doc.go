// Package scoring turns feature vectors into weighted heading scores.
//
// Each block receives four sub-scores in [0,1], all produced by piecewise
// linear mappings of its features:
//
//   - font: size ratio against the body font, bold, family and colour changes
//   - position: vertical position, left margin, whitespace above, page top
//   - text: length, letter case, trailing punctuation, keyword signal
//   - layout: isolation from same-style neighbours and indentation
//
// The composite is a weighted sum of the four, by default
//
//	score = 0.40*font + 0.25*position + 0.20*text + 0.15*layout
//
// Scores are relative evidence, not probabilities. Turning them into levels
// is the job of package calibrate, which derives cutoffs per document.
//
//	engine := scoring.NewEngine()
//	cands := engine.Score(blocks, vectors)
package scoring

// Package calibrate derives per-document score cutoffs for Title, H1, H2
// and H3.
//
// Fixed thresholds do not survive contact with real documents: a memo with
// one bold heading and a thesis with four heading styles produce very
// different score distributions. Calibrate looks for the natural breaks in
// one document's scores instead.
//
// The highest-scoring block on the first page is the Title candidate and is
// held out. The remaining scores are sorted and the largest gaps above the
// median become band boundaries, at most three of them. The Title is kept
// only when it clears the H1 band by [Config.TitleMargin]; otherwise the
// cutoffs are recomputed with it back in the distribution.
//
// A distribution without any usable gap is degenerate: every cutoff is
// raised above the maximum score so no headings are emitted, and
// [Cutoffs.Err] reports [ErrDegenerate].
package calibrate

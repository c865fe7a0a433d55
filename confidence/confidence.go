// Package confidence aggregates one document-level quality score from the
// outcome of extraction and calibration.
//
// The score combines three signals:
//
//	0.40 * separation    how cleanly calibration separated the heading bands
//	0.35 * completeness  fraction of blocks carrying font metadata
//	0.25 * backend       preference rank of the backend that produced the blocks
//
// A document without blocks scores 0.
package confidence

import (
	"github.com/tsawler/pdfoutline/model"
)

// Signal weights
const (
	SeparationWeight   = 0.40
	CompletenessWeight = 0.35
	BackendWeight      = 0.25
)

// fullSeparation is the mean band gap at which the separation signal saturates
const fullSeparation = 0.25

// Input carries everything the score depends on
type Input struct {
	// Blocks are the blocks the outline was built from
	Blocks []model.TextBlock

	// Separation is the mean separating gap reported by calibration
	Separation float64

	// BackendRank is the position of the producing backend in the priority
	// list, 0 for the primary backend.
	BackendRank int
}

// Breakdown holds the individual signals behind a score
type Breakdown struct {
	Separation   float64
	Completeness float64
	Backend      float64
	Score        float64
}

// Score returns the document confidence in [0,1]
func Score(in Input) float64 {
	return Explain(in).Score
}

// Explain returns the score together with its components
func Explain(in Input) Breakdown {
	if len(in.Blocks) == 0 {
		return Breakdown{}
	}

	withMeta := 0
	for _, b := range in.Blocks {
		if b.HasFontMetadata() {
			withMeta++
		}
	}

	bd := Breakdown{
		Separation:   clamp01(in.Separation / fullSeparation),
		Completeness: float64(withMeta) / float64(len(in.Blocks)),
		Backend:      BackendQuality(in.BackendRank),
	}
	bd.Score = clamp01(SeparationWeight*bd.Separation +
		CompletenessWeight*bd.Completeness +
		BackendWeight*bd.Backend)
	return bd
}

// BackendQuality maps a backend's priority rank to a quality signal: 1.0 for
// the primary backend, 0.6 for the first fallback, never below 0.2.
func BackendQuality(rank int) float64 {
	if rank < 0 {
		rank = 0
	}
	return max(0.2, 1-0.4*float64(rank))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

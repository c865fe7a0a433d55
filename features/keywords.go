package features

import (
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// KeywordScorer produces the lexical heading signal for every block of a
// document. Implementations must return one value in [0,1] per block and must
// not retain state between documents.
type KeywordScorer interface {
	Score(blocks []model.TextBlock) []float64
}

// KeywordFunc adapts a per-document function to the KeywordScorer interface
type KeywordFunc func(blocks []model.TextBlock) []float64

// Score calls f(blocks)
func (f KeywordFunc) Score(blocks []model.TextBlock) []float64 {
	return f(blocks)
}

// NoKeywords disables the lexical signal
type NoKeywords struct{}

// Score returns zero for every block
func (NoKeywords) Score(blocks []model.TextBlock) []float64 {
	return make([]float64, len(blocks))
}

// FrequencyKeywords derives the lexical signal from the document itself.
//
// A block scores NumberedScore when it starts with outline numbering. It
// scores RecurringScore when its lead word also leads at least MinRepeats-1
// other short lines while those lines stay at or below MaxShare of the
// document ("Chapter", "Article", "Appendix" emerge this way in documents that
// use them, without any built-in vocabulary).
type FrequencyKeywords struct {
	NumberedScore  float64
	RecurringScore float64
	MinRepeats     int
	MaxShare       float64

	// MaxLineLength is the longest block, in characters, considered a short line
	MaxLineLength int
}

// NewFrequencyKeywords returns the default frequency-based keyword signal
func NewFrequencyKeywords() FrequencyKeywords {
	return FrequencyKeywords{
		NumberedScore:  1.0,
		RecurringScore: 0.6,
		MinRepeats:     3,
		MaxShare:       0.34,
		MaxLineLength:  80,
	}
}

// Score implements KeywordScorer
func (k FrequencyKeywords) Score(blocks []model.TextBlock) []float64 {
	scores := make([]float64, len(blocks))
	if len(blocks) == 0 {
		return scores
	}

	leads := make([]string, len(blocks))
	counts := make(map[string]int)
	for i, b := range blocks {
		if !k.isShortLine(b.Text) {
			continue
		}
		w := text.LeadWord(b.Text)
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		leads[i] = w
		counts[w]++
	}

	for i, b := range blocks {
		if _, ok := text.NumberPrefix(b.Text); ok && k.isShortLine(b.Text) {
			scores[i] = k.NumberedScore
			continue
		}
		if leads[i] == "" {
			continue
		}
		n := counts[leads[i]]
		if n >= k.MinRepeats && float64(n)/float64(len(blocks)) <= k.MaxShare {
			scores[i] = k.RecurringScore
		}
	}
	return scores
}

func (k FrequencyKeywords) isShortLine(s string) bool {
	n := text.Length(s)
	return n > 0 && n <= k.MaxLineLength && text.SentenceBreaks(s) == 0 && !text.HasTrailingPunctuation(s)
}

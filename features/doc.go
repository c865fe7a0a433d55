// Package features converts raw text blocks into normalised feature vectors.
//
// Every ratio-based feature is anchored on a per-document [Baseline]: the
// modal body font size, font family, left margin and inter-block gap. Using
// the document's own body text instead of fixed constants lets the same
// scoring work for a 9pt academic paper and a 14pt slide deck.
//
//	ext := features.NewExtractor()
//	vectors := ext.Extract(blocks)
//
// Blocks without usable font metadata are never rejected. They receive
// neutral defaults (size ratio 1.0, not bold) and are flagged with
// [model.FeatureVector.Defaulted], so they behave like ordinary body text.
//
// # Keyword signal
//
// The lexical heading signal is pluggable through [KeywordScorer]. The
// default [FrequencyKeywords] carries no word list: it rewards outline
// numbering and lead words that recur across short lines of the same
// document. [NoKeywords] disables the signal.
package features

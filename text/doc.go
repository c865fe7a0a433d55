// Package text provides the text-shape analysis used when classifying blocks.
//
// The helpers in this package look only at a block's characters, never at its
// font or position:
//
//   - [Normalize] - NFKC normalisation and whitespace collapsing
//   - [DetectCase] - ALL_CAPS, TITLE_CASE or MIXED
//   - [HasTrailingPunctuation] and [SentenceBreaks] - sentence-like punctuation
//   - [NumberPrefix] - outline numbering such as "1.", "2.3" or "IV."
//   - [LeadWord] - the first word after any numbering, for frequency analysis
//
// All functions are pure and safe for concurrent use.
package text

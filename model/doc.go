// Package model provides the data structures shared by every stage of the
// outline pipeline.
//
// The types in this package are produced fresh for each document and are
// read-only once constructed. The only exception is [HeadingCandidate.Level],
// which the hierarchy builder corrects in place while repairing the outline.
//
// # Blocks
//
// A [TextBlock] is a contiguous unit of extracted text with its font and
// position metadata, as delivered by a PDF backend. Coordinates use a
// top-left origin with Y growing downward, so a block's Y is its distance
// from the top edge of the page:
//
//	b := model.TextBlock{
//	    Text:       "1. Introduction",
//	    FontSize:   16,
//	    Bold:       true,
//	    BBox:       model.NewBBox(20, 90, 180, 18),
//	    PageHeight: 792,
//	    Page:       1,
//	}
//
// # Derived data
//
//   - [FeatureVector] - normalised per-block features
//   - [HeadingCandidate] - sub-scores, composite score and tentative level
//
// # Output
//
//   - [DocumentOutline] - optional Title plus nested [Section] values
//   - [Table] - headers and rows detected in raw page text
//   - [DocumentMetadata] - backend, confidence, language, word count, timing
//   - [Result] - the JSON artifact written for each input document
package model

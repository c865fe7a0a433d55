// Package pdfoutline classifies the text blocks of PDF documents into an
// outline (Title, H1 to H3, body), detects delimited tables and produces a
// structured record of each document.
//
// Basic usage:
//
//	res, err := pdfoutline.Open("report.pdf").Process(ctx)
//	if err != nil {
//	    // res is still a valid, minimal record when every backend failed
//	}
//
// With options:
//
//	res, err := pdfoutline.Open("report.pdf").
//	    Backends("ledongthuc", "plaintext").
//	    BackendTimeout(30 * time.Second).
//	    Keywords(features.NoKeywords{}).
//	    Process(ctx)
//
// Blocks that were extracted elsewhere can be classified directly:
//
//	res, err := pdfoutline.FromExtraction(ext, 0).Process(ctx)
package pdfoutline

import (
	"path/filepath"

	"github.com/tsawler/pdfoutline/backend"
)

// Open returns a Processor for the PDF at path. Nothing is read until a
// terminal operation such as Process is called.
//
// Example:
//
//	res, err := pdfoutline.Open("document.pdf").Process(ctx)
func Open(path string) *Processor {
	return &Processor{
		path:     path,
		filename: filepath.Base(path),
		options:  defaultOptions(),
	}
}

// FromExtraction returns a Processor over blocks that were already
// acquired. rank is the position of the producing backend in the priority
// list and feeds the confidence score.
//
// Example:
//
//	ext, rank, err := chain.Extract(ctx, path)
//	res, err := pdfoutline.FromExtraction(ext, rank).Process(ctx)
func FromExtraction(ext *backend.Extraction, rank int) *Processor {
	return &Processor{
		extraction: ext,
		rank:       rank,
		options:    defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := pdfoutline.Must(pdfoutline.Open("document.pdf").Process(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

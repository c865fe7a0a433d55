package backend

import (
	"context"
	"strings"

	"github.com/tsawler/pdfoutline/model"
)

// Source extracts positioned text blocks from a document
type Source interface {
	// Name identifies the source in logs and in the extraction method of
	// the result
	Name() string

	// Extract reads the document at path. Implementations should return
	// promptly once ctx is done.
	Extract(ctx context.Context, path string) (*Extraction, error)
}

// Page holds what a source extracted from one page
type Page struct {
	// Number is the 1-based page number
	Number int

	Width  float64
	Height float64

	// Blocks are the page's text blocks in reading order
	Blocks []model.TextBlock

	// RawText is the page text with line breaks, tabs and wide horizontal
	// gaps preserved; it feeds table detection
	RawText string
}

// Extraction is the output of a successful Source
type Extraction struct {
	// Backend is the name of the source that produced the extraction
	Backend string

	Pages []Page
}

// PageCount returns the number of pages read
func (e *Extraction) PageCount() int {
	if e == nil {
		return 0
	}
	return len(e.Pages)
}

// Blocks returns every block of the document in reading order with Order
// renumbered from 0. The pages are not modified.
func (e *Extraction) Blocks() []model.TextBlock {
	if e == nil {
		return nil
	}
	var out []model.TextBlock
	for _, p := range e.Pages {
		for _, b := range p.Blocks {
			b.Order = len(out)
			out = append(out, b)
		}
	}
	return out
}

// Text returns the raw text of all pages separated by blank lines
func (e *Extraction) Text() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Pages))
	for _, p := range e.Pages {
		if p.RawText != "" {
			parts = append(parts, p.RawText)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Empty reports whether no page yielded any text block
func (e *Extraction) Empty() bool {
	if e == nil {
		return true
	}
	for _, p := range e.Pages {
		if len(p.Blocks) > 0 {
			return false
		}
	}
	return true
}

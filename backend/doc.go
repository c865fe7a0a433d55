// Package backend extracts positioned text blocks from PDF files.
//
// A [Source] turns a document into an [Extraction]: per page, the text
// blocks in reading order with font and position metadata, and the page's
// raw text with line breaks and column gaps preserved for table detection.
//
// # Sources
//
// The package provides three PDF sources, registered by name:
//
//   - [LedongthucSource] ("ledongthuc") - glyph positions and font metrics
//     via github.com/ledongthuc/pdf
//   - [PdfcpuSource] ("pdfcpu") - content stream interpretation via
//     github.com/pdfcpu/pdfcpu
//   - [PlainTextSource] ("plaintext") - one block per line of plain text,
//     without font metadata
//
// [Static] serves an in-memory extraction and is used to classify blocks
// produced elsewhere.
//
// # Fallback
//
// A [Chain] tries sources in priority order. Each attempt runs under its own
// time budget; an error, a panic, an empty result or an exceeded budget is
// recorded as a [BackendExtractionError] and the next source is tried. When
// every source fails the chain returns an [AllBackendsFailedError]:
//
//	chain, err := backend.NewChainFromNames(backend.DefaultOrder, 30*time.Second)
//	ext, rank, err := chain.Extract(ctx, "report.pdf")
//
// The rank is the index of the source that succeeded, which lowers the
// document confidence for fallback sources.
//
// # Grouping
//
// Sources that report glyph runs share [GroupConfig.Group]: runs sharing a
// baseline form a line, and consecutive lines of the same style separated by
// less than a line height form a block.
package backend

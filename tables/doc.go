// Package tables detects delimited tables in the raw text of PDF pages.
//
// Detection reads the page text a backend extracted, not the classified
// blocks, so it can run concurrently with heading classification.
//
// # Detectors
//
// Table detection is performed by types implementing the [Detector] interface.
// The package provides:
//
//   - [DelimitedDetector] - tab, pipe and space-aligned columns
//
// Detectors are registered globally and can be retrieved by name:
//
//	detector := tables.GetDetector("delimited")
//	found := detector.Detect(pageNumber, rawText)
//
// [DetectAll] scans every page of a document and numbers the tables found
// from 1.
//
// # Validation
//
// A candidate is a run of at least [Config.MinRows] consecutive lines sharing
// one delimiter kind. The first line becomes the headers. If any later line
// has a different number of cells, the whole candidate is discarded with
// [ErrTableValidation] rather than repaired, so every emitted row has exactly
// one cell per header. Markdown separator rows such as "|---|---|" are
// skipped.
//
// # Configuration
//
//	config := tables.DefaultConfig()
//	config.MinRows = 4
//	err := detector.Configure(config)
package tables

// Package layout builds the document outline from calibrated heading
// candidates.
//
// The [HierarchyBuilder] walks candidates in document order, assigns each
// one Title, H1, H2, H3 or Body, and nests the headings into sections:
//
//	builder := layout.NewHierarchyBuilder()
//	outline := builder.Build(cands, cutoffs)
//
// Headings never dangle. An H2 that appears before any H1 is demoted to H1,
// an H3 without an open H2 becomes H2, and a heading always closes the open
// sections at its own depth or deeper. Body blocks become the content of the
// deepest open section.
//
// # Running Headers and Footers
//
// Multi-page documents repeat page furniture: running titles, confidential
// notices, page numbers. At the top of every page these look exactly like
// headings. The [RunningTextDetector] finds text that recurs at a consistent
// position in the header or footer zone of most pages, so it can be removed
// before scoring:
//
//	blocks, found := layout.NewRunningTextDetector().Filter(blocks)
package layout

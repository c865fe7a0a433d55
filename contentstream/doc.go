// Package contentstream parses PDF page content streams and interprets their
// text operators.
//
// Content streams contain the instructions for rendering page content. The
// parser turns them into operations, each an operator with its operands:
//
//	ops, err := contentstream.NewParser(streamData).Parse()
//	for _, op := range ops {
//	    fmt.Printf("Operator: %s, Operands: %d\n", op.Operator, len(op.Operands))
//	}
//
// Parse returns the operations read before a syntax error together with the
// error, so a damaged stream still yields a partial page.
//
// # Text runs
//
// [TextInterpreter] follows the graphics and text state operators (q, Q, cm,
// BT, Tf, Tc, Tw, Tz, TL, Ts, Tm, Td, TD, T*) and records one [TextRun] per
// string shown by Tj, TJ, ' and ". Runs carry the effective font size and the
// baseline position in default user space:
//
//	runs, err := contentstream.ExtractText(streamData)
//
// Glyph widths are estimated from the font size because font programs are
// not loaded. String bytes are decoded as WinAnsi unless they start with a
// UTF-16 byte order mark.
package contentstream

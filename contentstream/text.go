package contentstream

import (
	"math"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// TextRun is one string painted by a text-showing operator.
// Coordinates are in default user space: origin bottom-left, Y at the
// baseline.
type TextRun struct {
	Text string

	// Font is the font resource name without the leading slash ("F1")
	Font string

	// Size is the effective font size after the text matrix and CTM
	Size float64

	X, Y  float64
	Width float64
}

// matrix is a 2D affine transformation [a b c d e f]
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// multiply returns m x o (m applied first)
func (m matrix) multiply(o matrix) matrix {
	return matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// textState is the part of the graphics state that affects text placement
type textState struct {
	ctm         matrix
	font        string
	size        float64
	charSpacing float64
	wordSpacing float64
	hscale      float64
	leading     float64
	rise        float64
}

// glyphWidth is the advance of an average glyph in text space units per
// point of font size, used when no font metrics are available.
const glyphWidth = 0.5

// TextInterpreter walks content stream operations and records the text
// runs they paint.
type TextInterpreter struct {
	state textState
	saved []textState
	tm    matrix
	tlm   matrix
	runs  []TextRun
}

// NewTextInterpreter creates an interpreter with the default graphics state
func NewTextInterpreter() *TextInterpreter {
	return &TextInterpreter{
		state: textState{ctm: identity, size: 12, hscale: 100},
		tm:    identity,
		tlm:   identity,
	}
}

// ExtractText parses data and returns the text runs it paints. Runs parsed
// before a syntax error are returned together with the error.
func ExtractText(data []byte) ([]TextRun, error) {
	ops, err := NewParser(data).Parse()
	in := NewTextInterpreter()
	in.Run(ops)
	return in.Runs(), err
}

// Run interprets ops in order
func (in *TextInterpreter) Run(ops []Operation) {
	for _, op := range ops {
		in.apply(op)
	}
}

// Runs returns the text runs recorded so far
func (in *TextInterpreter) Runs() []TextRun {
	return in.runs
}

func (in *TextInterpreter) apply(op Operation) {
	args := op.Operands
	st := &in.state

	switch op.Operator {
	// Graphics state
	case "q":
		in.saved = append(in.saved, in.state)
	case "Q":
		if n := len(in.saved); n > 0 {
			in.state = in.saved[n-1]
			in.saved = in.saved[:n-1]
		}
	case "cm":
		if m, ok := toMatrix(args); ok {
			st.ctm = m.multiply(st.ctm)
		}

	// Text state
	case "BT":
		in.tm = identity
		in.tlm = identity
	case "Tf":
		if len(args) == 2 {
			if name, ok := args[0].NameValue(); ok {
				st.font = name
			}
			if size, ok := args[1].Float(); ok {
				st.size = size
			}
		}
	case "Tc":
		setFloat(args, &st.charSpacing)
	case "Tw":
		setFloat(args, &st.wordSpacing)
	case "Tz":
		setFloat(args, &st.hscale)
	case "TL":
		setFloat(args, &st.leading)
	case "Ts":
		setFloat(args, &st.rise)

	// Text positioning
	case "Tm":
		if m, ok := toMatrix(args); ok {
			in.tm = m
			in.tlm = m
		}
	case "Td":
		if tx, ty, ok := toPair(args); ok {
			in.moveLine(tx, ty)
		}
	case "TD":
		if tx, ty, ok := toPair(args); ok {
			st.leading = -ty
			in.moveLine(tx, ty)
		}
	case "T*":
		in.moveLine(0, -st.leading)

	// Text showing
	case "Tj":
		if len(args) == 1 {
			in.show(args[0])
		}
	case "TJ":
		if len(args) == 1 && args[0].Kind == KindArray {
			in.showArray(args[0].Array)
		}
	case "'":
		in.moveLine(0, -st.leading)
		if len(args) == 1 {
			in.show(args[0])
		}
	case "\"":
		if len(args) == 3 {
			setFloat(args[:1], &st.wordSpacing)
			setFloat(args[1:2], &st.charSpacing)
			in.moveLine(0, -st.leading)
			in.show(args[2])
		}
	}
}

func (in *TextInterpreter) moveLine(tx, ty float64) {
	in.tlm = translate(tx, ty).multiply(in.tlm)
	in.tm = in.tlm
}

// advance moves the text matrix horizontally by tx text space units
func (in *TextInterpreter) advance(tx float64) {
	in.tm = translate(tx, 0).multiply(in.tm)
}

func (in *TextInterpreter) show(o Operand) {
	raw, ok := o.StringBytes()
	if !ok || len(raw) == 0 {
		return
	}
	st := in.state
	text := decodeText(raw)

	trm := in.tm.multiply(st.ctm)
	x := trm[4] + trm[2]*st.rise
	y := trm[5] + trm[3]*st.rise
	scale := math.Hypot(trm[2], trm[3])
	hscale := st.hscale / 100

	n := float64(len([]rune(text)))
	spaces := float64(strings.Count(text, " "))
	tx := (n*glyphWidth*st.size + n*st.charSpacing + spaces*st.wordSpacing) * hscale

	if strings.TrimSpace(text) != "" {
		in.runs = append(in.runs, TextRun{
			Text:  text,
			Font:  st.font,
			Size:  st.size * scale,
			X:     x,
			Y:     y,
			Width: tx * math.Hypot(trm[0], trm[1]),
		})
	}
	in.advance(tx)
}

func (in *TextInterpreter) showArray(items []Operand) {
	for _, item := range items {
		if item.Kind == KindNumber {
			in.advance(-item.Number / 1000 * in.state.size * in.state.hscale / 100)
			continue
		}
		in.show(item)
	}
}

// decodeText maps string bytes to text. Two-byte strings starting with a
// UTF-16 byte order mark are decoded as UTF-16BE; everything else is read
// as WinAnsi, which covers the simple fonts most producers emit.
func decodeText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, len(raw)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func setFloat(args []Operand, dst *float64) {
	if len(args) == 1 {
		if v, ok := args[0].Float(); ok {
			*dst = v
		}
	}
}

func toPair(args []Operand) (float64, float64, bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	a, ok1 := args[0].Float()
	b, ok2 := args[1].Float()
	return a, b, ok1 && ok2
}

func toMatrix(args []Operand) (matrix, bool) {
	var m matrix
	if len(args) != 6 {
		return m, false
	}
	for i, a := range args {
		v, ok := a.Float()
		if !ok {
			return m, false
		}
		m[i] = v
	}
	return m, true
}

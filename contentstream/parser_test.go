package contentstream

import (
	"testing"
)

func TestParseOperators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		operators []string
		operands  []int
	}{
		{"simple operator", "q", []string{"q"}, []int{0}},
		{"empty input", "", nil, nil},
		{"whitespace only", "  \n\t  ", nil, nil},
		{"text block", "BT /F1 12 Tf 100 700 Td (Hello) Tj ET", []string{"BT", "Tf", "Td", "Tj", "ET"}, []int{0, 2, 2, 1, 0}},
		{"text matrix", "1 0 0 1 72 720 Tm", []string{"Tm"}, []int{6}},
		{"path construction", "100 100 m 200 200 l S", []string{"m", "l", "S"}, []int{2, 2, 0}},
		{"star operators", "T* f* B*", []string{"T*", "f*", "B*"}, []int{0, 0, 0}},
		{"quote operators", "(a) ' 1 2 (b) \"", []string{"'", "\""}, []int{1, 3}},
		{"comments", "q % save state\n1 0 0 1 0 0 cm %done\nQ", []string{"q", "cm", "Q"}, []int{0, 6, 0}},
		{"marked content dict", "/Span <</ActualText (x) /MCID 3>> BDC EMC", []string{"BDC", "EMC"}, []int{2, 0}},
		{"inline image", "BI /W 2 /H 1 /BPC 8 ID \x00EI\xff\x01 EI Q", []string{"BI", "ID", "EI", "Q"}, []int{0, 6, 0, 0}},
		{"type3 glyph operator", "500 0 d0", []string{"d0"}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := NewParser([]byte(tt.input)).Parse()
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(ops) != len(tt.operators) {
				t.Fatalf("expected %d operations, got %d: %+v", len(tt.operators), len(ops), ops)
			}
			for i, op := range ops {
				if op.Operator != tt.operators[i] {
					t.Errorf("op %d: expected operator %q, got %q", i, tt.operators[i], op.Operator)
				}
				if len(op.Operands) != tt.operands[i] {
					t.Errorf("op %d (%s): expected %d operands, got %d", i, op.Operator, tt.operands[i], len(op.Operands))
				}
			}
		})
	}
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"100 Tz", 100},
		{"1.5 w", 1.5},
		{"-12 Ts", -12},
		{".5 w", 0.5},
		{"-.25 w", -0.25},
		{"+3 w", 3},
		{"- w", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ops, err := NewParser([]byte(tt.input)).Parse()
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got, ok := ops[0].Operands[0].Float()
			if !ok || got != tt.want {
				t.Errorf("expected %v, got %v (%v)", tt.want, got, ok)
			}
		})
	}
}

func TestParseStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"literal", "(Hello World) Tj", "Hello World"},
		{"nested parentheses", "(a (b) c) Tj", "a (b) c"},
		{"escaped parentheses", `(a \( b \)) Tj`, "a ( b )"},
		{"backslash escapes", `(x\ny\tz\\) Tj`, "x\ny\tz\\"},
		{"octal escape", `(\101\102\7) Tj`, "AB\a"},
		{"line continuation", "(abc\\\ndef) Tj", "abcdef"},
		{"hex", "<48656C6C6F> Tj", "Hello"},
		{"hex lowercase with whitespace", "<48 65 6c\n6c 6f> Tj", "Hello"},
		{"hex odd length", "<414> Tj", "A@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := NewParser([]byte(tt.input)).Parse()
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got, ok := ops[0].Operands[0].StringBytes()
			if !ok {
				t.Fatalf("expected string operand, got %s", ops[0].Operands[0].Kind)
			}
			if string(got) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseNames(t *testing.T) {
	ops, err := NewParser([]byte("/F1 12 Tf /Name#20With#23Hash gs")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if name, _ := ops[0].Operands[0].NameValue(); name != "F1" {
		t.Errorf("expected F1, got %q", name)
	}
	if name, _ := ops[1].Operands[0].NameValue(); name != "Name With#Hash" {
		t.Errorf("expected escaped name, got %q", name)
	}
}

func TestParseArrayAndKeywords(t *testing.T) {
	ops, err := NewParser([]byte("[(A) -120 (B) [1 2] /N true null] TJ false x")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}

	arr := ops[0].Operands[0]
	if arr.Kind != KindArray || len(arr.Array) != 7 {
		t.Fatalf("expected 7-element array, got %+v", arr)
	}
	kinds := []Kind{KindString, KindNumber, KindString, KindArray, KindName, KindBool, KindNull}
	for i, k := range kinds {
		if arr.Array[i].Kind != k {
			t.Errorf("element %d: expected %s, got %s", i, k, arr.Array[i].Kind)
		}
	}

	if ops[1].Operator != "x" || len(ops[1].Operands) != 1 || ops[1].Operands[0].Kind != KindBool {
		t.Errorf("expected false operand for x, got %+v", ops[1])
	}
}

func TestParseErrorReturnsPartial(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ops   int
	}{
		{"unclosed string", "q (abc Tj", 1},
		{"unclosed array", "BT [(a) TJ", 1},
		{"bad hex", "q <4G> Tj", 1},
		{"stray delimiter", "q ) Q", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := NewParser([]byte(tt.input)).Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if len(ops) != tt.ops {
				t.Errorf("expected %d partial operations, got %d", tt.ops, len(ops))
			}
		})
	}
}

func TestParserDoesNotShareOperands(t *testing.T) {
	a, _ := NewParser([]byte("1 2 Td")).Parse()
	b, _ := NewParser([]byte("3 4 Td")).Parse()

	if v, _ := a[0].Operands[0].Float(); v != 1 {
		t.Errorf("first parser operand changed to %v", v)
	}
	if v, _ := b[0].Operands[0].Float(); v != 3 {
		t.Errorf("second parser operand = %v", v)
	}
}

func TestHelpers(t *testing.T) {
	for _, c := range []byte("()<>[]{}/%") {
		if !isDelimiter(c) {
			t.Errorf("isDelimiter(%q) = false", c)
		}
	}
	for _, c := range []byte(" \t\r\n\f\x00") {
		if !isWhitespace(c) {
			t.Errorf("isWhitespace(%q) = false", c)
		}
	}
	if hexValue('a') != 10 || hexValue('F') != 15 || hexValue('7') != 7 || hexValue('z') != 0 {
		t.Error("hexValue mismatch")
	}
	if !isOperatorStart('\'') || !isOperatorStart('"') || isOperatorStart('1') {
		t.Error("isOperatorStart mismatch")
	}
}

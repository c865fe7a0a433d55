package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Operation represents a single content stream operation consisting of an
// operator and its operands.
type Operation struct {
	Operator string    // The operator (e.g., "Tj", "Tm", "q")
	Operands []Operand // The operands, in stream order
}

// Parser parses PDF content streams into a sequence of operations.
type Parser struct {
	data  []byte
	pos   int
	ops   []Operation
	stack []Operand
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse parses the content stream and returns all operations in order.
// On malformed input the operations read before the error are returned
// together with it, so callers can keep a partial page.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return p.ops, err
		}
	}
	return p.ops, nil
}

// parseNext parses the next token: operands are pushed onto the stack, an
// operator consumes the stack and emits an Operation.
func (p *Parser) parseNext() error {
	start := p.pos
	if isOperatorStart(p.data[p.pos]) {
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", start, err)
	}
	p.stack = append(p.stack, operand)
	return nil
}

// parseOperator reads an operator token. The keywords true, false and null
// are operands, not operators.
func (p *Parser) parseOperator() error {
	start := p.pos
	for p.pos < len(p.data) && isOperatorByte(p.data[p.pos]) {
		p.pos++
	}
	token := string(p.data[start:p.pos])
	if token == "" {
		return fmt.Errorf("empty operator at position %d", start)
	}

	switch token {
	case "true":
		p.stack = append(p.stack, NewBool(true))
		return nil
	case "false":
		p.stack = append(p.stack, NewBool(false))
		return nil
	case "null":
		p.stack = append(p.stack, Null())
		return nil
	}

	operation := Operation{
		Operator: token,
		Operands: make([]Operand, len(p.stack)),
	}
	copy(operation.Operands, p.stack)
	p.ops = append(p.ops, operation)
	p.stack = p.stack[:0]

	if token == "ID" {
		p.skipInlineImageData()
	}
	return nil
}

// skipInlineImageData advances past the binary data of an inline image to
// the EI operator, which is emitted on the next call to parseNext.
func (p *Parser) skipInlineImageData() {
	// one whitespace byte separates ID from the data
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isWhitespace(p.data[i-1])
		after := i+2 >= len(p.data) || isWhitespace(p.data[i+2]) || isDelimiter(p.data[i+2])
		if before && after {
			p.pos = i
			return
		}
	}
	p.pos = len(p.data)
}

// parseOperand parses a single operand: number, string, name, array or
// dictionary.
func (p *Parser) parseOperand() (Operand, error) {
	p.skipSpaceAndComments()
	if p.pos >= len(p.data) {
		return Operand{}, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	case isOperatorStart(c):
		// keywords inside arrays and dictionaries
		start := p.pos
		for p.pos < len(p.data) && isOperatorByte(p.data[p.pos]) {
			p.pos++
		}
		switch string(p.data[start:p.pos]) {
		case "true":
			return NewBool(true), nil
		case "false":
			return NewBool(false), nil
		case "null":
			return Null(), nil
		}
		return Operand{}, fmt.Errorf("unexpected keyword %q", p.data[start:p.pos])
	}

	return Operand{}, fmt.Errorf("unexpected character at position %d: %c", p.pos, c)
}

// parseNumber parses an integer or real number operand.
func (p *Parser) parseNumber() (Operand, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])
	switch numStr {
	case "+", "-", ".", "+.", "-.":
		// some producers write a bare sign for zero
		return NewNumber(0), nil
	}
	val, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return Operand{}, fmt.Errorf("invalid number %q: %w", numStr, err)
	}
	return NewNumber(val), nil
}

// parseString parses a literal string (...) with escape sequence handling.
func (p *Parser) parseString() (Operand, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			next := p.data[p.pos]
			p.pos++
			switch next {
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case 't':
				result.WriteByte('\t')
			case 'b':
				result.WriteByte('\b')
			case 'f':
				result.WriteByte('\f')
			case '\r':
				// line continuation
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				octal := int(next - '0')
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					d := p.data[p.pos]
					if d < '0' || d > '7' {
						break
					}
					octal = octal*8 + int(d-'0')
					p.pos++
				}
				result.WriteByte(byte(octal & 0xFF))
			default:
				// \( \) \\ and unknown escapes keep the character
				result.WriteByte(next)
			}
		case c == '(':
			depth++
			result.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		default:
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return Operand{}, fmt.Errorf("unclosed string")
	}
	return NewString(result.Bytes()), nil
}

// parseHexString parses a hexadecimal string <...>. An odd final digit is
// padded with 0.
func (p *Parser) parseHexString() (Operand, error) {
	p.pos++ // skip '<'

	var (
		result  bytes.Buffer
		high    byte
		pending bool
	)
	for {
		if p.pos >= len(p.data) {
			return Operand{}, fmt.Errorf("unclosed hex string")
		}
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			break
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return Operand{}, fmt.Errorf("invalid hex digit: %c", c)
		}
		if pending {
			result.WriteByte(high<<4 | hexValue(c))
			pending = false
		} else {
			high = hexValue(c)
			pending = true
		}
	}
	if pending {
		result.WriteByte(high << 4)
	}
	return NewString(result.Bytes()), nil
}

// parseName parses a name object /Name with # escape handling.
func (p *Parser) parseName() (Operand, error) {
	p.pos++ // skip '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}
	return NewName(result.String()), nil
}

// parseArray parses an array [...] of operands.
func (p *Parser) parseArray() (Operand, error) {
	p.pos++ // skip '['

	arr := Operand{Kind: KindArray}
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			return Operand{}, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		item, err := p.parseOperand()
		if err != nil {
			return Operand{}, err
		}
		arr.Array = append(arr.Array, item)
	}
}

// parseDict parses a dictionary <<...>>, used by inline images and marked
// content properties.
func (p *Parser) parseDict() (Operand, error) {
	p.pos += 2 // skip '<<'

	dict := Operand{Kind: KindDict, Dict: make(map[string]Operand)}
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			return Operand{}, fmt.Errorf("unclosed dictionary")
		}
		if p.data[p.pos] == '>' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.data[p.pos] != '/' {
			return Operand{}, fmt.Errorf("dictionary key must be a name")
		}
		key, err := p.parseName()
		if err != nil {
			return Operand{}, err
		}
		value, err := p.parseOperand()
		if err != nil {
			return Operand{}, err
		}
		name, _ := key.NameValue()
		dict.Dict[name] = value
	}
}

// skipSpaceAndComments advances past whitespace and % comments.
func (p *Parser) skipSpaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

// isLetter reports whether c is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isOperatorStart reports whether c can begin an operator token.
func isOperatorStart(c byte) bool {
	return isLetter(c) || c == '\'' || c == '"'
}

// isOperatorByte reports whether c can continue an operator token ("T*", "d0").
func isOperatorByte(c byte) bool {
	return isOperatorStart(c) || c == '*' || (c >= '0' && c <= '9')
}

// isDelimiter reports whether c is a PDF delimiter character.
func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

// isHexDigit reports whether c is a hexadecimal digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hexValue returns the numeric value of a hexadecimal digit.
func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

package contentstream

// Kind identifies the type of an operand
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindName
	KindArray
	KindDict
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	default:
		return "null"
	}
}

// Operand is a single value preceding an operator in a content stream.
// Only the field matching Kind is meaningful.
type Operand struct {
	Kind   Kind
	Number float64
	Bool   bool

	// Bytes holds the raw bytes of a string or the decoded name (no slash)
	Bytes []byte

	Array []Operand
	Dict  map[string]Operand
}

// NewNumber returns a numeric operand
func NewNumber(v float64) Operand { return Operand{Kind: KindNumber, Number: v} }

// NewString returns a string operand holding the raw bytes b
func NewString(b []byte) Operand { return Operand{Kind: KindString, Bytes: b} }

// NewName returns a name operand; name excludes the leading slash
func NewName(name string) Operand { return Operand{Kind: KindName, Bytes: []byte(name)} }

// NewBool returns a boolean operand
func NewBool(v bool) Operand { return Operand{Kind: KindBool, Bool: v} }

// Null returns the null operand
func Null() Operand { return Operand{Kind: KindNull} }

// Float returns the numeric value
func (o Operand) Float() (float64, bool) {
	if o.Kind != KindNumber {
		return 0, false
	}
	return o.Number, true
}

// Int returns the numeric value truncated to an int
func (o Operand) Int() (int, bool) {
	f, ok := o.Float()
	return int(f), ok
}

// StringBytes returns the raw bytes of a string operand
func (o Operand) StringBytes() ([]byte, bool) {
	if o.Kind != KindString {
		return nil, false
	}
	return o.Bytes, true
}

// NameValue returns the name of a name operand without the leading slash
func (o Operand) NameValue() (string, bool) {
	if o.Kind != KindName {
		return "", false
	}
	return string(o.Bytes), true
}

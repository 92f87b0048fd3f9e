package keypad

// Symbol is one discrete keypad input, identified by its label.
type Symbol string

// Class groups symbols by how the input machine treats them.
type Class int

const (
	Unknown Class = iota
	Digit
	Operator
	Equals
	Decimal
	Backspace
	Clear
	Function // recognized but not implemented
)

func (c Class) String() string {
	switch c {
	case Digit:
		return "digit"
	case Operator:
		return "operator"
	case Equals:
		return "equals"
	case Decimal:
		return "decimal"
	case Backspace:
		return "backspace"
	case Clear:
		return "clear"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

const (
	Multiply Symbol = "×"
	Divide   Symbol = "÷"
	Subtract Symbol = "−"
	Add      Symbol = "+"
	Eq       Symbol = "="
	Point    Symbol = "."
	Delete   Symbol = ""
	ClearAll Symbol = "clear"
	Sqrt     Symbol = "√"
	Percent  Symbol = "%"
	Negate   Symbol = "±"
	OpenPar  Symbol = "("
	ClosePar Symbol = ")"
)

// Operators lists the binary operators in keypad order.
var Operators = []Symbol{Multiply, Divide, Subtract, Add}

// alternate labels accepted from older layouts and keyboards
var aliases = map[Symbol]Symbol{
	"C": ClearAll,
	"x": Multiply,
	"*": Multiply,
	"/": Divide,
	"-": Subtract,
	"⌫": Delete,
}

// Canonical maps an alias onto the label used in the expression buffer.
func Canonical(s Symbol) Symbol {
	if c, ok := aliases[s]; ok {
		return c
	}
	return s
}

// Classify reports the class of s after canonicalization.
func Classify(s Symbol) Class {
	s = Canonical(s)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Digit
	}
	switch s {
	case Multiply, Divide, Subtract, Add:
		return Operator
	case Eq:
		return Equals
	case Point:
		return Decimal
	case Delete:
		return Backspace
	case ClearAll:
		return Clear
	case Sqrt, Percent, Negate, OpenPar, ClosePar:
		return Function
	}
	return Unknown
}

// IsOperator reports whether r is a binary operator glyph as it appears in
// the expression buffer.
func IsOperator(r rune) bool {
	switch Symbol(r) {
	case Multiply, Divide, Subtract, Add:
		return true
	}
	return false
}

package input

import (
	"unicode/utf8"

	"calculator/internal/calc"
	"calculator/internal/keypad"
)

// State is derived from the shape of the buffer.
type State int

const (
	Empty State = iota
	EndsInOperand
	EndsInOperator
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case EndsInOperand:
		return "ends in operand"
	case EndsInOperator:
		return "ends in operator"
	default:
		return "unknown"
	}
}

// Effect tells the caller what an accepted symbol did.
type Effect int

const (
	Appended Effect = iota + 1
	Evaluated
	Deleted
	Cleared
)

// Outcome describes an accepted symbol.
type Outcome struct {
	Effect Effect

	// Preview holds the silently evaluated buffer after a digit or a
	// backspace, when the buffer is currently well formed.
	Preview    string
	HasPreview bool

	// Expression and Result are set for Evaluated.
	Expression string
	Result     string

	// Emptied is set when a backspace removed the last character.
	Emptied bool
}

// Machine owns the expression buffer and the last result. It is not safe
// for concurrent use.
type Machine struct {
	buf       string
	last      string
	hasLast   bool
	precision int
}

// NewMachine returns an empty machine formatting results with precision
// fractional digits. A negative precision selects calc.DefaultPrecision.
func NewMachine(precision int) *Machine {
	if precision < 0 {
		precision = calc.DefaultPrecision
	}
	return &Machine{precision: precision}
}

// Buffer returns the expression typed so far.
func (m *Machine) Buffer() string {
	return m.buf
}

// LastResult returns the result of the last successful "=".
func (m *Machine) LastResult() (string, bool) {
	return m.last, m.hasLast
}

// sign prefixes a negative last result reused as the first operand.
const sign = "-"

// State classifies the buffer. A buffer holding only the sign of a
// negative number still needs an operand, so it counts as EndsInOperator.
func (m *Machine) State() State {
	if m.buf == "" {
		return Empty
	}
	if m.buf == sign {
		return EndsInOperator
	}
	r, _ := utf8.DecodeLastRuneInString(m.buf)
	if keypad.IsOperator(r) {
		return EndsInOperator
	}
	return EndsInOperand
}

// Reset empties the buffer and forgets the last result.
func (m *Machine) Reset() {
	m.buf = ""
	m.last = ""
	m.hasLast = false
}

// Submit applies one symbol. A non-nil error is always a *Rejection and
// leaves the machine untouched.
func (m *Machine) Submit(sym keypad.Symbol) (Outcome, error) {
	sym = keypad.Canonical(sym)
	switch keypad.Classify(sym) {
	case keypad.Digit:
		m.buf += string(sym)
		return m.withPreview(Outcome{Effect: Appended}), nil
	case keypad.Operator:
		return m.operator(sym)
	case keypad.Equals:
		return m.equals(sym)
	case keypad.Backspace:
		return m.backspace(sym)
	case keypad.Clear:
		m.Reset()
		return Outcome{Effect: Cleared}, nil
	case keypad.Decimal, keypad.Function:
		return Outcome{}, &Rejection{Kind: FeatureUnavailable, Reason: ReasonNotImplemented, Symbol: sym}
	}
	return Outcome{}, &Rejection{Kind: InputRejected, Reason: ReasonUnknownSymbol, Symbol: sym}
}

func (m *Machine) operator(sym keypad.Symbol) (Outcome, error) {
	switch m.State() {
	case Empty:
		if !m.hasLast {
			return Outcome{}, &Rejection{Kind: InputRejected, Reason: ReasonNoOperand, Symbol: sym}
		}
		m.buf = m.last
	case EndsInOperator:
		return Outcome{}, &Rejection{Kind: InputRejected, Reason: ReasonConsecutiveOperator, Symbol: sym}
	}
	m.buf += string(sym)
	return Outcome{Effect: Appended}, nil
}

func (m *Machine) equals(sym keypad.Symbol) (Outcome, error) {
	switch m.State() {
	case Empty:
		return Outcome{}, &Rejection{Kind: InputRejected, Reason: ReasonNothingToEvaluate, Symbol: sym}
	case EndsInOperator:
		return Outcome{}, &Rejection{Kind: InputRejected, Reason: ReasonConsecutiveOperator, Symbol: sym}
	}
	expr := m.buf
	val, err := calc.Evaluate(expr)
	if err != nil {
		return Outcome{}, &Rejection{Kind: EvaluationFailed, Reason: ReasonEvaluation, Symbol: sym, Err: err}
	}
	result := calc.Format(val, m.precision)
	m.last = result
	m.hasLast = true
	m.buf = ""
	return Outcome{Effect: Evaluated, Expression: expr, Result: result}, nil
}

func (m *Machine) backspace(sym keypad.Symbol) (Outcome, error) {
	if m.buf == "" {
		return Outcome{}, &Rejection{Kind: InputRejected, Reason: ReasonNothingToDelete, Symbol: sym}
	}
	_, size := utf8.DecodeLastRuneInString(m.buf)
	m.buf = m.buf[:len(m.buf)-size]
	if m.buf == sign {
		m.buf = ""
	}
	if m.buf == "" {
		return Outcome{Effect: Deleted, Emptied: true}, nil
	}
	return m.withPreview(Outcome{Effect: Deleted}), nil
}

// withPreview evaluates the buffer for the live display. Failures are
// dropped; only "=" reports evaluation errors.
func (m *Machine) withPreview(out Outcome) Outcome {
	if m.State() != EndsInOperand {
		return out
	}
	val, err := calc.Evaluate(m.buf)
	if err != nil {
		return out
	}
	out.Preview = calc.Format(val, m.precision)
	out.HasPreview = true
	return out
}

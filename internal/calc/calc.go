package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmpty        = errors.New("empty expression")
	ErrSyntax       = errors.New("malformed expression")
	ErrDivideByZero = errors.New("division by zero")
	ErrNonFinite    = errors.New("result is not a finite number")
)

// EvaluationError reports why an expression could not be evaluated.
// Pos is the byte offset into the normalized expression.
type EvaluationError struct {
	Expr string
	Pos  int
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q at %d: %v", e.Expr, e.Pos, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// display glyph -> ASCII operator
var glyphs = strings.NewReplacer(
	"×", "*",
	"x", "*",
	"X", "*",
	"÷", "/",
	"−", "-",
)

// Normalize rewrites keypad glyphs into the ASCII operators the parser reads.
func Normalize(expr string) string {
	return glyphs.Replace(expr)
}

// Evaluate parses an infix expression over + - * / and returns its value.
// Multiplication and division bind tighter than addition and subtraction;
// operators of equal precedence associate left. A '-' at the very start of
// the expression is the sign of the first number. Division by zero and
// non-finite results are errors.
func Evaluate(expr string) (float64, error) {
	p := parser{input: Normalize(expr), leading: true}
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, p.fail(ErrEmpty)
	}

	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, p.fail(ErrSyntax)
	}
	// avoid NaN/Inf leaking
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, p.fail(ErrNonFinite)
	}
	return val, nil
}

type parser struct {
	input   string
	pos     int
	leading bool // next operand opens the expression
}

func (p *parser) fail(err error) error {
	return &EvaluationError{Expr: p.input, Pos: p.pos, Err: err}
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) parseExpr() (float64, error) {
	return p.parseAddSub()
}

func (p *parser) parseAddSub() (float64, error) {
	val, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		right, err := p.parseMulDiv()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			val += right
		} else {
			val -= right
		}
	}
	return val, nil
}

func (p *parser) parseMulDiv() (float64, error) {
	val, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		p.pos++
		right, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			val *= right
			continue
		}
		if right == 0 {
			return 0, p.fail(ErrDivideByZero)
		}
		val /= right
	}
	return val, nil
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, p.fail(ErrSyntax)
	}
	signed := p.leading
	p.leading = false
	ch := p.input[p.pos]
	if ch == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, p.fail(ErrSyntax)
		}
		p.pos++
		return v, nil
	}
	return p.parseNumber(signed)
}

// parseNumber reads an unsigned decimal literal, or a signed one when it
// opens the whole expression.
func (p *parser) parseNumber(signed bool) (float64, error) {
	start := p.pos
	j := p.pos
	if signed && p.input[j] == '-' {
		j++
	}
	digits := 0
	seenDot := false
	for j < len(p.input) {
		c := p.input[j]
		if isDigit(c) {
			digits++
			j++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			j++
			continue
		}
		break
	}
	if digits == 0 {
		return 0, p.fail(ErrSyntax)
	}
	v, err := strconv.ParseFloat(p.input[start:j], 64)
	if err != nil {
		return 0, p.fail(fmt.Errorf("%w: %v", ErrSyntax, err))
	}
	p.pos = j
	return v, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

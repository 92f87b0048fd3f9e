package input

import (
	"errors"
	"testing"

	"calculator/internal/calc"
	"calculator/internal/keypad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m *Machine, syms ...keypad.Symbol) Outcome {
	t.Helper()
	var out Outcome
	for _, s := range syms {
		var err error
		out, err = m.Submit(s)
		require.NoError(t, err, "symbol %q", s)
	}
	return out
}

func rejection(t *testing.T, err error) *Rejection {
	t.Helper()
	var rej *Rejection
	require.True(t, errors.As(err, &rej), "expected *Rejection, got %v", err)
	return rej
}

func TestDigitsAppendWithPreview(t *testing.T) {
	m := NewMachine(-1)
	out := press(t, m, "1", "2")
	assert.Equal(t, "12", m.Buffer())
	assert.Equal(t, EndsInOperand, m.State())
	assert.Equal(t, Appended, out.Effect)
	assert.True(t, out.HasPreview)
	assert.Equal(t, "12", out.Preview)

	out = press(t, m, "+", "3")
	assert.Equal(t, "12+3", m.Buffer())
	assert.Equal(t, "15", out.Preview)

	_, ok := m.LastResult()
	assert.False(t, ok, "preview must not set the last result")
}

func TestPreviewFailureIsSilent(t *testing.T) {
	m := NewMachine(-1)
	out := press(t, m, "5", "÷", "0")
	assert.Equal(t, "5÷0", m.Buffer())
	assert.False(t, out.HasPreview)
}

func TestOperatorOnEmptyBuffer(t *testing.T) {
	m := NewMachine(-1)
	_, err := m.Submit("+")
	rej := rejection(t, err)
	assert.Equal(t, InputRejected, rej.Kind)
	assert.Equal(t, ReasonNoOperand, rej.Reason)
	assert.Equal(t, MsgInvalidInput, rej.Message())
	assert.Equal(t, Empty, m.State())
}

func TestConsecutiveOperatorsRejected(t *testing.T) {
	ops := append([]keypad.Symbol{}, keypad.Operators...)
	ops = append(ops, keypad.Eq)

	for _, first := range keypad.Operators {
		for _, second := range ops {
			t.Run(string(first)+string(second), func(t *testing.T) {
				m := NewMachine(-1)
				press(t, m, "4", first)
				before := m.Buffer()

				_, err := m.Submit(second)
				rej := rejection(t, err)
				assert.Equal(t, InputRejected, rej.Kind)
				assert.Equal(t, ReasonConsecutiveOperator, rej.Reason)
				assert.Equal(t, before, m.Buffer())
			})
		}
	}
}

func TestEqualsOnEmptyBuffer(t *testing.T) {
	m := NewMachine(-1)
	_, err := m.Submit("=")
	rej := rejection(t, err)
	assert.Equal(t, ReasonNothingToEvaluate, rej.Reason)

	// still rejected after a completed calculation
	press(t, m, "2", "=")
	_, err = m.Submit("=")
	assert.Equal(t, ReasonNothingToEvaluate, rejection(t, err).Reason)
}

func TestEqualsEvaluates(t *testing.T) {
	m := NewMachine(-1)
	out := press(t, m, "5", "+", "3", "=")
	assert.Equal(t, Evaluated, out.Effect)
	assert.Equal(t, "5+3", out.Expression)
	assert.Equal(t, "8", out.Result)
	assert.Equal(t, "", m.Buffer())
	assert.Equal(t, Empty, m.State())

	last, ok := m.LastResult()
	require.True(t, ok)
	assert.Equal(t, "8", last)
}

func TestEqualsFailureKeepsBuffer(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "7", "÷", "0")
	_, err := m.Submit("=")
	rej := rejection(t, err)
	assert.Equal(t, EvaluationFailed, rej.Kind)
	assert.Equal(t, MsgCalculating, rej.Message())
	assert.ErrorIs(t, err, calc.ErrDivideByZero)
	assert.Equal(t, "7÷0", m.Buffer())

	_, ok := m.LastResult()
	assert.False(t, ok)
}

func TestLastResultFeedsNextExpression(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "3", "+", "4", "=")
	press(t, m, "+")
	assert.Equal(t, "7+", m.Buffer())

	out := press(t, m, "1", "=")
	assert.Equal(t, "7+1", out.Expression)
	assert.Equal(t, "8", out.Result)
}

func TestNegativeLastResult(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "2", "−", "5", "=")
	last, _ := m.LastResult()
	assert.Equal(t, "-3", last)

	out := press(t, m, "×", "2", "=")
	assert.Equal(t, "-3×2", out.Expression)
	assert.Equal(t, "-6", out.Result)
}

func TestBackspaceOverNegativeLastResult(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "2", "−", "5", "=", "+")
	assert.Equal(t, "-3+", m.Buffer())

	out := press(t, m, "")
	assert.Equal(t, "-3", out.Preview)

	out = press(t, m, "")
	assert.Empty(t, m.Buffer())
	assert.True(t, out.Emptied)
	assert.Equal(t, Empty, m.State())

	out = press(t, m, "+", "3", "=")
	assert.Equal(t, "-3+3", out.Expression)
	assert.Equal(t, "0", out.Result)
}

func TestLoneSignNeedsOperand(t *testing.T) {
	m := NewMachine(-1)
	m.buf = "-"
	assert.Equal(t, EndsInOperator, m.State())

	_, err := m.Submit("+")
	assert.Equal(t, ReasonConsecutiveOperator, rejection(t, err).Reason)
	_, err = m.Submit("=")
	rej := rejection(t, err)
	assert.Equal(t, InputRejected, rej.Kind)
	assert.Equal(t, "-", m.Buffer())

	out := press(t, m, "4")
	assert.Equal(t, "-4", out.Preview)
}

func TestFractionalLastResult(t *testing.T) {
	m := NewMachine(-1)
	out := press(t, m, "5", "÷", "2", "=")
	assert.Equal(t, "2.5", out.Result)

	out = press(t, m, "×", "2", "=")
	assert.Equal(t, "5", out.Result)
}

func TestBackspace(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "1", "2")

	out := press(t, m, "")
	assert.Equal(t, "1", m.Buffer())
	assert.Equal(t, Deleted, out.Effect)
	assert.False(t, out.Emptied)
	assert.Equal(t, "1", out.Preview)

	out = press(t, m, "")
	assert.Equal(t, "", m.Buffer())
	assert.True(t, out.Emptied)

	_, err := m.Submit("")
	assert.Equal(t, ReasonNothingToDelete, rejection(t, err).Reason)
}

func TestBackspaceRemovesWholeGlyph(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "6", "÷")
	press(t, m, "")
	assert.Equal(t, "6", m.Buffer())
	assert.Equal(t, EndsInOperand, m.State())
}

func TestClear(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "9", "=", "1", "+")

	out := press(t, m, "clear")
	assert.Equal(t, Cleared, out.Effect)
	assert.Equal(t, "", m.Buffer())
	_, ok := m.LastResult()
	assert.False(t, ok)

	// "C" is the same key
	press(t, m, "4", "=", "C")
	_, ok = m.LastResult()
	assert.False(t, ok)
}

func TestUnavailableFeatures(t *testing.T) {
	for _, sym := range []keypad.Symbol{".", "√", "%", "±", "(", ")"} {
		t.Run(string(sym), func(t *testing.T) {
			m := NewMachine(-1)
			press(t, m, "5", "+")
			_, err := m.Submit(sym)
			rej := rejection(t, err)
			assert.Equal(t, FeatureUnavailable, rej.Kind)
			assert.Equal(t, MsgNotYetImplemented, rej.Message())
			assert.Equal(t, "5+", m.Buffer())
		})
	}
}

func TestUnknownSymbol(t *testing.T) {
	m := NewMachine(-1)
	_, err := m.Submit("sin")
	rej := rejection(t, err)
	assert.Equal(t, InputRejected, rej.Kind)
	assert.Equal(t, MsgButtonNotFound, rej.Message())
	assert.Contains(t, rej.Error(), "sin")
}

func TestAliasesEnterBufferAsGlyphs(t *testing.T) {
	m := NewMachine(-1)
	press(t, m, "6", "x", "2", "-", "1")
	assert.Equal(t, "6×2−1", m.Buffer())

	out := press(t, m, "=")
	assert.Equal(t, "11", out.Result)
}

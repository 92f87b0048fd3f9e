package input

import (
	"fmt"

	"calculator/internal/keypad"
)

// Kind classifies why a keypress did not go through.
type Kind int

const (
	// InputRejected: the keypress is illegal in the current state.
	InputRejected Kind = iota + 1
	// FeatureUnavailable: the symbol is known but not implemented.
	FeatureUnavailable
	// EvaluationFailed: the buffer could not be turned into a number.
	EvaluationFailed
)

func (k Kind) String() string {
	switch k {
	case InputRejected:
		return "input rejected"
	case FeatureUnavailable:
		return "feature unavailable"
	case EvaluationFailed:
		return "evaluation failed"
	default:
		return "unknown"
	}
}

// Reason names the rule a rejected keypress broke.
type Reason string

const (
	ReasonUnknownSymbol       Reason = "unknown symbol"
	ReasonConsecutiveOperator Reason = "consecutive operators"
	ReasonNoOperand           Reason = "operator with nothing to act on"
	ReasonNothingToEvaluate   Reason = "nothing to evaluate"
	ReasonNothingToDelete     Reason = "nothing to delete"
	ReasonNotImplemented      Reason = "not implemented"
	ReasonEvaluation          Reason = "evaluation error"
)

// Status texts shown to the user.
const (
	MsgButtonNotFound    = "Button not found."
	MsgInvalidInput      = "Invalid input."
	MsgNotYetImplemented = "Button not yet implemented."
	MsgCalculating       = "Error calculating results."
)

// Rejection is returned by Machine.Submit when a symbol is not accepted.
// The machine state is unchanged whenever a Rejection is returned.
type Rejection struct {
	Kind   Kind
	Reason Reason
	Symbol keypad.Symbol
	Err    error // evaluator error for EvaluationFailed
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %q: %v", r.Kind, r.Symbol, r.Err)
	}
	return fmt.Sprintf("%s: %q: %s", r.Kind, r.Symbol, r.Reason)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Message returns the fixed status text for the rejection.
func (r *Rejection) Message() string {
	switch r.Kind {
	case FeatureUnavailable:
		return MsgNotYetImplemented
	case EvaluationFailed:
		return MsgCalculating
	}
	if r.Reason == ReasonUnknownSymbol {
		return MsgButtonNotFound
	}
	return MsgInvalidInput
}

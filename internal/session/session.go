// Package session composes the input machine with display state, history
// and the status message shown to the user. A Session is driven one symbol
// at a time and is not safe for concurrent use; the caller serializes input.
package session

import (
	"errors"
	"log/slog"

	"calculator/internal/input"
	"calculator/internal/keypad"
	"calculator/internal/logger"
)

// Zero is the canonical empty display value.
const Zero = "0"

// Entry is one completed calculation.
type Entry struct {
	Expression string
	Result     string
}

// String renders the entry as "<expression> = <result>".
func (e Entry) String() string {
	return e.Expression + " = " + e.Result
}

// Status is the message shown after a rejected or failed keypress. Seq
// increases with every new status so a UI timer can tell messages apart.
type Status struct {
	Kind input.Kind
	Text string
	Seq  uint64
}

// Snapshot is the observable state after an operation.
type Snapshot struct {
	Display       string
	Workings      string
	History       []string // most recent first
	LastResult    string
	HasLastResult bool
	Status        *Status
}

// Session owns one calculator's state.
type Session struct {
	machine    *input.Machine
	display    string
	history    []Entry
	status     *Status
	seq        uint64
	maxHistory int
	log        *slog.Logger
	observers  []observer
	nextID     int
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Option configures a Session.
type Option func(*Session)

// WithMaxHistory caps the history; n <= 0 keeps every entry.
func WithMaxHistory(n int) Option {
	return func(s *Session) { s.maxHistory = n }
}

// WithPrecision sets the fractional digits kept in results.
func WithPrecision(p int) Option {
	return func(s *Session) { s.machine = input.NewMachine(p) }
}

// WithLogger sets the logger used for rejected input.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a session showing "0" with no history.
func New(opts ...Option) *Session {
	s := &Session{
		machine: input.NewMachine(-1),
		display: Zero,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit applies one keypad symbol and returns the resulting state. It
// never fails; rejections are reported through Snapshot.Status.
func (s *Session) Submit(sym keypad.Symbol) Snapshot {
	s.status = nil

	out, err := s.machine.Submit(sym)
	if err != nil {
		s.reject(sym, err)
		return s.publish()
	}

	switch out.Effect {
	case input.Appended, input.Deleted:
		if out.Emptied {
			s.display = Zero
		} else if out.HasPreview {
			s.display = out.Preview
		}
	case input.Evaluated:
		s.display = out.Result
		s.record(Entry{Expression: out.Expression, Result: out.Result})
		s.log.Info("evaluated", "expression", out.Expression, "result", out.Result)
	case input.Cleared:
		s.display = Zero
		s.history = nil
		s.log.Debug("cleared")
	}
	return s.publish()
}

// Reset is the same as pressing clear.
func (s *Session) Reset() Snapshot {
	return s.Submit(keypad.ClearAll)
}

// ClearStatus removes the current status message.
func (s *Session) ClearStatus() Snapshot {
	s.status = nil
	return s.publish()
}

// DismissStatus clears the status only if it is still the message with
// sequence number seq. It reports whether anything was cleared.
func (s *Session) DismissStatus(seq uint64) bool {
	if s.status == nil || s.status.Seq != seq {
		return false
	}
	s.ClearStatus()
	return true
}

// Subscribe registers fn to be called with the new state after every
// operation, in subscription order. The returned func removes the
// subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	last, ok := s.machine.LastResult()
	snap := Snapshot{
		Display:       s.display,
		Workings:      s.machine.Buffer(),
		History:       make([]string, len(s.history)),
		LastResult:    last,
		HasLastResult: ok,
	}
	for i, e := range s.history {
		snap.History[i] = e.String()
	}
	if s.status != nil {
		st := *s.status
		snap.Status = &st
	}
	return snap
}

// Entries returns a copy of the history, most recent first.
func (s *Session) Entries() []Entry {
	return append([]Entry(nil), s.history...)
}

func (s *Session) record(e Entry) {
	s.history = append([]Entry{e}, s.history...)
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

func (s *Session) reject(sym keypad.Symbol, err error) {
	var rej *input.Rejection
	if !errors.As(err, &rej) {
		// Machine.Submit only returns rejections
		rej = &input.Rejection{Kind: input.EvaluationFailed, Reason: input.ReasonEvaluation, Symbol: sym, Err: err}
	}

	s.seq++
	s.status = &Status{Kind: rej.Kind, Text: rej.Message(), Seq: s.seq}

	attrs := []any{"symbol", string(sym), "buffer", s.machine.Buffer(), "reason", string(rej.Reason)}
	if rej.Kind == input.EvaluationFailed {
		s.log.Warn("evaluation failed", append(attrs, "error", rej.Err)...)
		return
	}
	s.log.Debug(rej.Kind.String(), attrs...)
}

func (s *Session) publish() Snapshot {
	snap := s.Snapshot()
	for _, o := range s.observers {
		o.fn(snap)
	}
	return snap
}

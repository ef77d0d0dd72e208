// Package keypad implements a single-screen four-function calculator as a
// small state machine over two operand strings and one pending operator.
//
// A Machine is not safe for concurrent use. Each operation runs to completion
// and failures (an unparsable operand, division by zero) are absorbed into the
// machine's state rather than returned to the caller.
package keypad

import (
	"errors"
	"fmt"
)

// ErrInvalidOperand is returned by Restore for operands that break the
// at-most-one-decimal-point invariant.
var ErrInvalidOperand = errors.New("invalid operand")

// State is the complete mutable state of a calculator.
type State struct {
	Current  Operand
	Previous Operand
	Op       Operator
	// ResetScreen means the next digit or decimal starts a fresh operand
	// instead of extending the displayed one.
	ResetScreen bool
}

// Phase is the derived state of a Machine.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseOperatorPending Phase = "operator_pending"
	PhaseEnteringRight   Phase = "entering_right"
	PhaseError           Phase = "error"
)

// Outcome describes the effect of one operation.
type Outcome int

const (
	Unchanged Outcome = iota
	Updated
	Evaluated
	DivideByZero
	ParseFailure
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	case Evaluated:
		return "evaluated"
	case DivideByZero:
		return "divide_by_zero"
	case ParseFailure:
		return "parse_failure"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Machine is the calculator state machine.
type Machine struct {
	s State
}

// New returns a machine in the cleared state.
func New() *Machine {
	m := &Machine{}
	m.ClearAll()
	return m
}

// Restore returns a machine positioned at s.
func Restore(s State) (*Machine, error) {
	if !s.Current.Valid() {
		return nil, fmt.Errorf("current %q: %w", s.Current, ErrInvalidOperand)
	}
	if !s.Previous.Valid() {
		return nil, fmt.Errorf("previous %q: %w", s.Previous, ErrInvalidOperand)
	}
	if s.Op != OpNone && !s.Op.Valid() {
		return nil, fmt.Errorf("unknown operator %q", s.Op.String())
	}
	return &Machine{s: s}, nil
}

// State returns a copy of the machine's state.
func (m *Machine) State() State { return m.s }

// Phase derives the machine's current phase from its state.
func (m *Machine) Phase() Phase {
	switch {
	case m.s.Current.IsError():
		return PhaseError
	case m.s.Op == OpNone:
		return PhaseIdle
	case m.s.ResetScreen:
		return PhaseOperatorPending
	default:
		return PhaseEnteringRight
	}
}

// AppendDigit types one digit. Bytes outside '0'..'9' are ignored.
func (m *Machine) AppendDigit(d Digit) Outcome {
	if !d.Valid() {
		return Unchanged
	}
	before := m.s
	if m.s.ResetScreen {
		m.s.Current = ""
		m.s.ResetScreen = false
	}
	m.s.Current = m.s.Current.withDigit(d)
	return m.changed(before)
}

// AppendDecimal types a decimal point. A fresh entry starts from "0.".
func (m *Machine) AppendDecimal() Outcome {
	before := m.s
	if m.s.ResetScreen {
		m.s.Current = zeroOperand
		m.s.ResetScreen = false
	}
	m.s.Current = m.s.Current.withDecimal()
	return m.changed(before)
}

// ChooseOperation stages op. If a right operand has been typed for an
// already pending operator, that operation is evaluated first, strictly left
// to right: 3 + 4 * evaluates 7 before staging *.
func (m *Machine) ChooseOperation(op Operator) Outcome {
	if !op.Valid() || (m.s.Current == "" && m.s.Previous == "") {
		return Unchanged
	}

	before := m.s
	outcome := Unchanged
	if m.s.Previous != "" && !m.s.ResetScreen {
		outcome = m.Calculate()
	}

	m.s.Op = op
	m.s.Previous = m.s.Current
	m.s.ResetScreen = true

	if outcome == Unchanged || outcome == ParseFailure {
		return m.changed(before)
	}
	return outcome
}

// Calculate applies the pending operator to the previous and current
// operands.
func (m *Machine) Calculate() Outcome {
	if m.s.Op == OpNone || m.s.ResetScreen {
		return Unchanged
	}

	prev, ok := m.s.Previous.Float()
	if !ok {
		return ParseFailure
	}
	cur, ok := m.s.Current.Float()
	if !ok {
		return ParseFailure
	}

	if m.s.Op == OpDivide && cur == 0 {
		m.s = State{Current: errorOperand, ResetScreen: true}
		return DivideByZero
	}

	result, ok := m.s.Op.apply(prev, cur)
	if !ok {
		return ParseFailure
	}

	m.s = State{Current: Operand(FormatResult(result)), ResetScreen: true}
	return Evaluated
}

// ClearAll returns the machine to idle with "0" displayed.
func (m *Machine) ClearAll() Outcome {
	before := m.s
	m.s = State{Current: zeroOperand}
	return m.changed(before)
}

// DeleteDigit removes the last typed character. It does nothing while the
// displayed value is about to be replaced, and clears everything from the
// error state.
func (m *Machine) DeleteDigit() Outcome {
	if m.s.ResetScreen {
		return Unchanged
	}
	if m.s.Current.IsError() {
		return m.ClearAll()
	}
	before := m.s
	m.s.Current = m.s.Current.trimmed()
	return m.changed(before)
}

func (m *Machine) changed(before State) Outcome {
	if m.s == before {
		return Unchanged
	}
	return Updated
}

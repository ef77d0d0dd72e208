package keypad

import "fmt"

// Operator is a pending binary operation. The zero value is OpNone.
type Operator byte

const (
	OpNone     Operator = 0
	OpAdd      Operator = '+'
	OpSubtract Operator = '-'
	OpMultiply Operator = '*'
	OpDivide   Operator = '/'
)

// ParseOperator accepts the internal operator identities "+", "-", "*" and "/".
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSubtract, nil
	case "*":
		return OpMultiply, nil
	case "/":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("unknown operator %q", s)
}

// Valid reports whether op is one of the four arithmetic operators.
func (op Operator) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// String returns the internal identity ("+", "-", "*", "/"), or "" for OpNone.
func (op Operator) String() string {
	if op == OpNone {
		return ""
	}
	return string(rune(op))
}

// Symbol returns the glyph shown on the display. It is never used for
// comparisons.
func (op Operator) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "−"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	}
	return op.String()
}

// Name is the operator's metric and log label.
func (op Operator) Name() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "none"
}

func (op Operator) apply(a, b float64) (float64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSubtract:
		return a - b, true
	case OpMultiply:
		return a * b, true
	case OpDivide:
		return a / b, true
	}
	return 0, false
}

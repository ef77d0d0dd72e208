package keypad

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is returned for keys that have no calculator binding.
var ErrUnknownKey = errors.New("unknown key")

// ActionKind names one of the six machine operations.
type ActionKind string

const (
	ActionDigit     ActionKind = "digit"
	ActionDecimal   ActionKind = "decimal"
	ActionOperator  ActionKind = "operator"
	ActionCalculate ActionKind = "calculate"
	ActionClear     ActionKind = "clear"
	ActionDelete    ActionKind = "delete"
)

// Action is one decoded input event.
type Action struct {
	Kind     ActionKind
	Digit    Digit
	Operator Operator
}

// ParseKey maps a key name, as reported by a keyboard or button, to an action.
//
//	0-9                digit
//	.                  decimal point
//	+ -                add, subtract
//	* x X              multiply
//	/                  divide
//	Enter =            calculate
//	Backspace          delete
//	Escape c C         clear
func ParseKey(key string) (Action, error) {
	if d, ok := ParseDigit(key); ok {
		return Action{Kind: ActionDigit, Digit: d}, nil
	}
	if op, err := ParseOperator(key); err == nil {
		return Action{Kind: ActionOperator, Operator: op}, nil
	}

	switch key {
	case ".":
		return Action{Kind: ActionDecimal}, nil
	case "x", "X":
		return Action{Kind: ActionOperator, Operator: OpMultiply}, nil
	case "Enter", "=":
		return Action{Kind: ActionCalculate}, nil
	case "Backspace":
		return Action{Kind: ActionDelete}, nil
	case "Escape", "c", "C":
		return Action{Kind: ActionClear}, nil
	}

	return Action{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// ParseKeys decodes every key or none.
func ParseKeys(keys []string) ([]Action, error) {
	actions := make([]Action, 0, len(keys))
	for i, key := range keys {
		a, err := ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// Apply dispatches a to the matching operation.
func (m *Machine) Apply(a Action) Outcome {
	switch a.Kind {
	case ActionDigit:
		return m.AppendDigit(a.Digit)
	case ActionDecimal:
		return m.AppendDecimal()
	case ActionOperator:
		return m.ChooseOperation(a.Operator)
	case ActionCalculate:
		return m.Calculate()
	case ActionClear:
		return m.ClearAll()
	case ActionDelete:
		return m.DeleteDigit()
	}
	return Unchanged
}

// Press decodes key and applies it.
func (m *Machine) Press(key string) (Outcome, error) {
	a, err := ParseKey(key)
	if err != nil {
		return Unchanged, err
	}
	return m.Apply(a), nil
}

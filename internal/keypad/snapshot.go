package keypad

// Snapshot is what a display renders after every operation.
type Snapshot struct {
	// Current is the large line: the operand being typed, a result, or "Error".
	Current string
	// Previous is blank, the bare previous operand, or "{previous} {symbol}"
	// while an operator is pending.
	Previous string
	// Operator is the pending operator, OpNone when nothing is pending. At most
	// one operator key is shown as active, and it is always this one.
	Operator Operator
	Phase    Phase
}

// Snapshot projects the machine's state onto the two display lines.
func (m *Machine) Snapshot() Snapshot {
	previous := m.s.Previous.String()
	if m.s.Op != OpNone {
		previous = previous + " " + m.s.Op.Symbol()
	}
	return Snapshot{
		Current:  m.s.Current.String(),
		Previous: previous,
		Operator: m.s.Op,
		Phase:    m.Phase(),
	}
}

// ActiveOperator reports whether op is the operator to highlight.
func (s Snapshot) ActiveOperator(op Operator) bool {
	return s.Operator != OpNone && s.Operator == op
}

package calculator

import "keypad-calculator/internal/keypad"

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys and
// POST /calculator/replay.
type KeysRequest struct {
	Keys []string `json:"keys" validate:"required,min=1,max=64,dive,required,max=16"`
}

// Display is the rendered calculator: the two display lines, the operator
// key to highlight ("" for none) and the derived phase.
type Display struct {
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Operator string `json:"operator"`
	Phase    string `json:"phase"`
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	SessionID string  `json:"session_id"`
	Display   Display `json:"display"`
}

// ReplayStep records the display after one key.
type ReplayStep struct {
	Key     string  `json:"key"`
	Outcome string  `json:"outcome"`
	Display Display `json:"display"`
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	Steps   []ReplayStep `json:"steps"`
	Display Display      `json:"display"`
}

func newDisplay(s keypad.Snapshot) Display {
	return Display{
		Current:  s.Current,
		Previous: s.Previous,
		Operator: s.Operator.String(),
		Phase:    string(s.Phase),
	}
}

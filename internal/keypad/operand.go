package keypad

import (
	"errors"
	"strconv"
	"strings"
)

// ErrorText is what the display shows after a failed evaluation.
const ErrorText = "Error"

// Operand is a numeric literal under construction, kept exactly as typed
// ("3.", "-5", "0.50") until it is evaluated.
type Operand string

const (
	zeroOperand  Operand = "0"
	errorOperand Operand = ErrorText
)

// Digit is a single decimal digit key.
type Digit byte

// ParseDigit converts "0".."9" to a Digit.
func ParseDigit(s string) (Digit, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return Digit(s[0]), true
}

// Valid reports whether d is one of '0'..'9'.
func (d Digit) Valid() bool { return d >= '0' && d <= '9' }

func (d Digit) String() string { return string(rune(d)) }

func (o Operand) String() string { return string(o) }

// IsError reports whether o is the error sentinel.
func (o Operand) IsError() bool { return o == errorOperand }

// HasDecimal reports whether o already contains a decimal point.
func (o Operand) HasDecimal() bool { return strings.Contains(string(o), ".") }

// Valid reports whether o satisfies the operand invariant of at most one
// decimal point.
func (o Operand) Valid() bool { return strings.Count(string(o), ".") <= 1 }

// withDigit applies the leading-zero rules: a zero is not stacked onto a lone
// zero, and any other digit replaces the lone zero.
func (o Operand) withDigit(d Digit) Operand {
	if d == '0' && o == zeroOperand {
		return o
	}
	if o == zeroOperand {
		return Operand(d.String())
	}
	return o + Operand(d.String())
}

func (o Operand) withDecimal() Operand {
	if o.HasDecimal() {
		return o
	}
	return o + "."
}

// trimmed drops the last character. A single character, or a sign followed by
// one digit, collapses to "0".
func (o Operand) trimmed() Operand {
	if len(o) == 1 || (len(o) == 2 && strings.HasPrefix(string(o), "-")) {
		return zeroOperand
	}
	if o == "" {
		return zeroOperand
	}
	return o[:len(o)-1]
}

// Float parses the operand. "3." parses as 3; "Error", "" and "-" do not parse.
func (o Operand) Float() (float64, bool) {
	if o == "" || o.IsError() {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(o), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	// Out-of-range literals parse to ±Inf and surface as "Error" once formatted.
	return f, true
}

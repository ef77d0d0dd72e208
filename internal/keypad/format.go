package keypad

import (
	"math"
	"strconv"
	"strings"
)

const (
	// significantDigits strips binary floating-point noise (0.1+0.2).
	significantDigits = 12
	// maxPlain is the largest magnitude rendered without an exponent.
	maxPlain = 999_999_999_999
	// exponentDigits is the mantissa width of the exponential form.
	exponentDigits = 7
	// exactDigits covers the full decimal expansion of any float64.
	exactDigits = 800
)

// FormatResult renders an evaluation result for the display.
//
// The result is first rounded to 12 significant digits, ties away from zero.
// Magnitudes above 999,999,999,999 are shown as d.dddddde+N; everything else
// as a plain decimal, so very small results come out as long strings such as
// "0.0000001" rather than in exponent form. Non-finite results show "Error".
func FormatResult(result float64) string {
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return ErrorText
	}

	rounded, err := roundSignificant(result, significantDigits)
	if err != nil {
		return ErrorText
	}

	if math.Abs(rounded) > maxPlain {
		return formatExponent(rounded, exponentDigits)
	}
	if rounded == 0 {
		// Avoid "-0".
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// roundSignificant rounds x to n significant digits, ties away from zero.
func roundSignificant(x float64, n int) (float64, error) {
	if x == 0 {
		return x, nil
	}
	digits, exp := roundedDigits(math.Abs(x), n)
	f, err := strconv.ParseFloat(string(digits)+"e"+strconv.Itoa(exp-n+1), 64)
	if err != nil {
		return 0, err
	}
	return math.Copysign(f, x), nil
}

// formatExponent renders x with n significant digits in exponent form, such as 1.234568e+12.
func formatExponent(x float64, n int) string {
	digits, exp := roundedDigits(math.Abs(x), n)

	var b strings.Builder
	if x < 0 {
		b.WriteByte('-')
	}
	b.WriteByte(digits[0])
	if n > 1 {
		b.WriteByte('.')
		b.Write(digits[1:])
	}
	b.WriteByte('e')
	if exp >= 0 {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(exp))
	return b.String()
}

// roundedDigits returns the first n significant digits of the positive,
// finite x, rounded half away from zero on its exact decimal value, and the
// decimal exponent of the first digit.
func roundedDigits(x float64, n int) ([]byte, int) {
	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(x, 'e', exactDigits, 64), "e")
	all := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(exponent)

	digits := []byte(all[:n])
	if all[n] < '5' {
		return digits, exp
	}

	for i := n - 1; i >= 0; i-- {
		if digits[i] != '9' {
			digits[i]++
			return digits, exp
		}
		digits[i] = '0'
	}
	// Every digit carried: 99…9 became 100…0.
	digits[0] = '1'
	return digits, exp + 1
}

// Package format renders numbers and times for display: metric-style
// abbreviations, comma grouping, fixed decimal places and English
// "time ago" phrases. Numeric output follows JavaScript's Number
// formatting so values match what browser code produces.
package format

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// JSString formats f the way JavaScript's Number#toString does for base 10:
// shortest round-trip digits, plain notation for magnitudes in [1e-6, 1e21)
// and exponent notation outside that range.
func JSString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}

// ToFixed formats x with exactly places fraction digits using the rounding
// of JavaScript's Number#toFixed: the exact binary value is rounded to the
// nearest representable decimal, ties going away from zero. Magnitudes of
// 1e21 and above fall back to JSString. Negative places are treated as 0.
func ToFixed(x float64, places int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= 1e21 {
		return JSString(x)
	}
	neg, intDigits, fracDigits := fixedParts(x, places)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(intDigits)
	if fracDigits != "" {
		b.WriteByte('.')
		b.WriteString(fracDigits)
	}
	return b.String()
}

// fixedParts splits the toFixed rendering of a finite x into its sign,
// integer digits and fraction digits.
func fixedParts(x float64, places int) (neg bool, intDigits, fracDigits string) {
	if places < 0 {
		places = 0
	}
	if x < 0 {
		neg = true
		x = -x
	}

	r := new(big.Rat).SetFloat64(x)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	n := new(big.Int).Quo(r.Num(), r.Denom())
	rem := new(big.Rat).Sub(r, new(big.Rat).SetInt(n))
	if rem.Cmp(big.NewRat(1, 2)) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	digits := n.String()
	if places == 0 {
		return neg, digits, ""
	}
	if len(digits) <= places {
		digits = strings.Repeat("0", places-len(digits)+1) + digits
	}
	split := len(digits) - places
	return neg, digits[:split], digits[split:]
}

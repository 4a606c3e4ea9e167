package format

import (
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
)

// NoPlaces disables the maxPlaces or forcePlaces argument of
// AbbreviateNumber and AnnotateNumber.
const NoPlaces = -1

// abbreviation pairs a metric-style suffix with the value it stands for.
type abbreviation struct {
	suffix string
	scale  float64
}

// abbreviations is ordered from the largest threshold down.
var abbreviations = []abbreviation{
	{"Q", 1e18},
	{"q", 1e15},
	{"T", 1e12},
	{"B", 1e9},
	{"M", 1e6},
	{"K", 1e3},
}

// suffixScale returns the divisor for a suffix. The empty suffix scales by 1.
func suffixScale(suffix string) (float64, bool) {
	if suffix == "" {
		return 1, true
	}
	for _, a := range abbreviations {
		if a.suffix == suffix {
			return a.scale, true
		}
	}
	return 0, false
}

// AbbreviateNumber shortens n with a K/M/B/T/q/Q suffix picked from its
// magnitude, or with letter when it is non-empty. maxPlaces caps the number
// of fraction digits and forcePlaces pads or rounds to an exact count; pass
// NoPlaces to disable either.
//
//	AbbreviateNumber(1500, 1, NoPlaces, "")          // "1.5K"
//	AbbreviateNumber(1234567, 2, NoPlaces, "")       // "1.23M"
//	AbbreviateNumber(2500, NoPlaces, 2, "M")         // "0.00M"
func AbbreviateNumber(n float64, maxPlaces, forcePlaces int, letter string) string {
	if letter != "" {
		return AnnotateNumber(n, maxPlaces, forcePlaces, letter)
	}

	abbr := ""
	for _, a := range abbreviations {
		if n >= a.scale {
			abbr = a.suffix
			break
		}
	}
	return AnnotateNumber(n, maxPlaces, forcePlaces, abbr)
}

// fractionPattern captures the trailing fraction digits of a plain decimal.
var fractionPattern = regexp.MustCompile(`\.(\d+)$`)

// AnnotateNumber divides n by the scale abbr stands for and appends abbr.
// An unknown abbr yields "0" followed by abbr. See AbbreviateNumber for the
// meaning of maxPlaces and forcePlaces.
func AnnotateNumber(n float64, maxPlaces, forcePlaces int, abbr string) string {
	var value float64
	if scale, ok := suffixScale(abbr); ok {
		value = n / scale
	}

	out := JSString(value)
	if maxPlaces >= 0 {
		if m := fractionPattern.FindStringSubmatch(out); m != nil && len(m[1]) > maxPlaces {
			out = ToFixed(value, maxPlaces)
			value = parseJSNumber(out)
		}
	}
	if forcePlaces >= 0 {
		out = ToFixed(value, forcePlaces)
	}

	return out + abbr
}

// parseJSNumber converts a string produced by ToFixed back to a float.
func parseJSNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// NumberWithCommas renders x with two decimal places, drops a ".00"
// fraction and groups the integer digits in threes with commas.
// NaN renders as "0".
//
//	NumberWithCommas(1234567)   // "1,234,567"
//	NumberWithCommas(1234.5)    // "1,234.50"
func NumberWithCommas(x float64) string {
	if math.IsNaN(x) {
		x = 0
	}
	if math.IsInf(x, 0) || math.Abs(x) >= 1e21 {
		return JSString(x)
	}

	neg, intDigits, fracDigits := fixedParts(x, 2)
	n, _ := new(big.Int).SetString(intDigits, 10)

	out := humanize.BigComma(n)
	if neg {
		out = "-" + out
	}
	if fracDigits != "00" {
		out += "." + fracDigits
	}
	return out
}

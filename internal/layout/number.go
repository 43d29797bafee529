package layout

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	nonNumericRe  = regexp.MustCompile(`[^\d,.\-]`)
	innerSpacesRe = regexp.MustCompile(`[^\S\r\n]+`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
)

// ParseNumber parses a Brazilian-formatted numeral ("1.234,56") into a
// float. Dots are thousands separators and are dropped; the decimal comma
// becomes a decimal point. Returns nil when the remainder does not parse
// to a finite number.
func ParseNumber(s string) *float64 {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return nil
	}
	return &n
}

// Round2 rounds half-up to 2 decimal places.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Round6 rounds half-up to 6 decimal places, the precision kept for unit
// prices.
func Round6(v float64) float64 {
	return math.Floor(v*1e6+0.5) / 1e6
}

// NormalizeSpaces collapses horizontal whitespace runs to single spaces
// while keeping line breaks, then collapses any remaining multi-whitespace
// runs. Input is NFC-normalized first so accented labels match their
// composed regex character classes regardless of how the PDF encoded them.
func NormalizeSpaces(s string) string {
	s = norm.NFC.String(s)
	s = innerSpacesRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

package services

import (
	"regexp"
)

// spaceClass matches what a browser treats as whitespace, including NBSP and
// the narrow no-break space used as a thousands separator.
const spaceClass = `\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// valueBeforeM3 captures a quantity directly followed by the "m3" unit.
// Grouped thousands use "." or whitespace; the decimal part uses ",".
var valueBeforeM3 = regexp.MustCompile(
	`(?i)(\d{1,3}(?:[.` + spaceClass + `]\d{3})*(?:,\d+)?|\d+(?:,\d+)?)[` + spaceClass + `]*m3\b`,
)

// ExtractValues returns every finite value in text that precedes the m3 unit,
// in order of appearance.
func ExtractValues(text string) []float64 {
	var values []float64
	scanValues(text, func(v float64) {
		values = append(values, v)
	})
	return values
}

// scanValues calls fn for every parsed value. Scanning resumes right after the
// captured number, so the unit text itself is searched again.
func scanValues(text string, fn func(float64)) {
	for pos := 0; pos < len(text); {
		loc := valueBeforeM3.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return
		}
		if n := ParseNumber(text[pos+loc[2] : pos+loc[3]]); IsFinite(n) {
			fn(n)
		}
		pos += loc[3]
	}
}

// SumValues adds up values in order.
func SumValues(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// ExtractLineValues is ExtractValues limited to the first line of text.
func ExtractLineValues(line string) []float64 {
	if i := lineBreak.FindStringIndex(line); i != nil {
		line = line[:i[0]]
	}
	return ExtractValues(line)
}

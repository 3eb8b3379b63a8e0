package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// numberConvention is a group/decimal separator pair.
type numberConvention struct {
	group   string
	decimal string
}

// localeConventions are tried in order: de-DE first, then en-US.
var localeConventions = []numberConvention{
	{group: ".", decimal: ","},
	{group: ",", decimal: "."},
}

// ParseNumber converts German or English formatted text into a float.
// It returns NaN when no convention yields a finite number.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}

	for _, conv := range localeConventions {
		normalized := strings.ReplaceAll(s, conv.group, "")
		normalized = strings.Replace(normalized, conv.decimal, ".", 1)
		if n, ok := parseFinite(stripSpace(normalized)); ok {
			return n
		}
	}

	if n, ok := parseFinite(strings.Replace(stripSpace(s), ",", ".", 1)); ok {
		return n
	}
	return math.NaN()
}

// CoerceNumber converts loosely typed input (e.g. decoded JSON) to a float.
// Strings go through ParseNumber; everything else is converted without locale logic.
func CoerceNumber(v any) float64 {
	switch x := v.(type) {
	case string:
		return ParseNumber(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return math.NaN()
		}
		return n
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(n) {
		return 0, false
	}
	return n, true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			return -1
		}
		return r
	}, s)
}

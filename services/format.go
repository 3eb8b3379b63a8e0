package services

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder stands in for any value that is unknown or not applicable.
const Placeholder = "–"

// NoValuesMessage is shown when the input has no m3 values at all.
const NoValuesMessage = "Keine Werte mit „m3“ gefunden."

var german = message.NewPrinter(language.German)

// Quantity formats v with German grouping and at most three decimals.
func Quantity(v float64) string {
	return german.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// ISK formats v as a currency amount with at most two decimals.
func ISK(v float64) string {
	return german.Sprint(number.Decimal(v, number.MaxFractionDigits(2))) + " ISK"
}

// Percent formats a ratio with exactly one decimal, e.g. 0.1234 -> "12,3%".
func Percent(ratio float64) string {
	return strings.Replace(fmt.Sprintf("%.1f", ratio*100), ".", ",", 1) + "%"
}

// HMS formats whole seconds as HH:MM:SS. Hours are not wrapped at 24.
func HMS(seconds float64) string {
	total := wholeSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// Verbose formats seconds as "N Tage N Std N Min N Sek", dropping zero day,
// hour and minute parts. Seconds are always present.
func Verbose(seconds float64) string {
	total := wholeSeconds(seconds)
	d := total / 86400
	h := total % 86400 / 3600
	m := total % 3600 / 60
	s := total % 60

	var chunks []string
	if d > 0 {
		chunks = append(chunks, fmt.Sprintf("%d Tage", d))
	}
	if h > 0 {
		chunks = append(chunks, fmt.Sprintf("%d Std", h))
	}
	if m > 0 {
		chunks = append(chunks, fmt.Sprintf("%d Min", m))
	}
	chunks = append(chunks, fmt.Sprintf("%d Sek", s))
	return strings.Join(chunks, " ")
}

// ValuesList joins the formatted values with " | ".
func ValuesList(values []float64) string {
	if len(values) == 0 {
		return NoValuesMessage
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Quantity(v)
	}
	return strings.Join(parts, " | ")
}

// PositiveOrPlaceholder formats v with Quantity when it is greater than zero.
func PositiveOrPlaceholder(v float64) string {
	if v > 0 {
		return Quantity(v)
	}
	return Placeholder
}

// NonZeroOrPlaceholder formats v with Quantity unless it is zero.
func NonZeroOrPlaceholder(v float64) string {
	if v != 0 {
		return Quantity(v)
	}
	return Placeholder
}

func wholeSeconds(seconds float64) int64 {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	if seconds >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(seconds))
}

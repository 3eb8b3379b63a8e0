package services

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"m3calc/models"
)

// EffectiveRate multiplies the three throughput factors. Factors that do not
// parse count as zero.
func EffectiveRate(rate, modules, chars string) float64 {
	return finiteOrZero(ParseNumber(rate)) *
		finiteOrZero(ParseNumber(modules)) *
		finiteOrZero(ParseNumber(chars))
}

// Duration returns the seconds needed to move sum at eff per second, or NaN
// unless both are positive.
func Duration(sum, eff float64) float64 {
	if eff > 0 && sum > 0 {
		return sum / eff
	}
	return math.NaN()
}

// Estimate runs extraction and the rate calculation for one form.
func Estimate(form models.FormState) models.Estimate {
	values := ExtractValues(form.Raw)
	sum := SumValues(values)
	eff := EffectiveRate(form.Rate, form.Modules, form.Chars)
	return models.Estimate{
		Values:    values,
		SumVolume: sum,
		EffRate:   eff,
		Seconds:   Duration(sum, eff),
	}
}

// Compute builds a full report for form. Prices are left empty.
func Compute(form models.FormState, now time.Time) *models.Report {
	est := Estimate(form)
	return &models.Report{
		ID:        uuid.New(),
		CreatedAt: now,
		Form:      form,
		Estimate:  est,
		Labels:    GroupByLabel(form.Raw),
		Values:    GroupByValue(est.Values),
		Prices:    make(map[string]*models.PriceQuote),
	}
}

// ETA describes when work of the given length finishes if started at now.
// It returns "" for a non-finite duration.
func ETA(now time.Time, seconds float64) string {
	if !IsFinite(seconds) {
		return ""
	}
	eta := now.Add(secondsToDuration(seconds))

	nowStr := now.Format("15:04")
	etaTime := eta.Format("15:04")
	if sameDay(now, eta) {
		return fmt.Sprintf("Jetzt: %s → Fertig um %s", nowStr, etaTime)
	}
	return fmt.Sprintf("Jetzt: %s → Fertig am %s um %s", nowStr, eta.Format("02.01.2006"), etaTime)
}

func secondsToDuration(seconds float64) time.Duration {
	seconds = math.Max(0, seconds)
	if seconds >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func finiteOrZero(v float64) float64 {
	if IsFinite(v) {
		return v
	}
	return 0
}

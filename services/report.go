package services

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"m3calc/models"
)

// Renderer receives every piece of output the calculator produces. The label
// table may be rendered again after prices arrive.
type Renderer interface {
	RenderEstimate(r *models.Report, now time.Time)
	RenderLabels(rows []models.LabelGroup, prices map[string]*models.PriceQuote)
	RenderValues(rows []models.ValueGroup)
}

// TerminalRenderer prints ANSI-coloured tables.
type TerminalRenderer struct {
	mu     sync.Mutex
	w      io.Writer
	useHMS bool
}

// NewTerminalRenderer writes to w. useHMS switches the duration KPI to HH:MM:SS.
func NewTerminalRenderer(w io.Writer, useHMS bool) *TerminalRenderer {
	return &TerminalRenderer{w: w, useHMS: useHMS}
}

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiTitle  = "\033[1;35m"
	ansiHeader = "\033[1;33m"
	ansiValue  = "\033[1;32m"
)

var (
	thickRule = strings.Repeat("═", 78)
	thinRule  = strings.Repeat("─", 78)
)

func (r *TerminalRenderer) RenderEstimate(rep *models.Report, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	est := rep.Estimate
	duration := Placeholder
	if IsFinite(est.Seconds) {
		if r.useHMS {
			duration = HMS(est.Seconds)
		} else {
			duration = Verbose(est.Seconds)
		}
	}
	eta := ETA(now, est.Seconds)
	if eta == "" {
		eta = Placeholder
	}

	fmt.Fprintf(r.w, "\n%s%s%s\n", ansiTitle, thickRule, ansiReset)
	fmt.Fprintf(r.w, "%s  m3 ESTIMATE%s\n", ansiTitle, ansiReset)
	fmt.Fprintf(r.w, "%s%s%s\n\n", ansiTitle, thickRule, ansiReset)

	fmt.Fprintf(r.w, "  Summe Volumen   : %s%s%s\n", ansiValue, PositiveOrPlaceholder(est.SumVolume), ansiReset)
	fmt.Fprintf(r.w, "  Effektive Rate  : %s%s%s\n", ansiValue, PositiveOrPlaceholder(est.EffRate), ansiReset)
	fmt.Fprintf(r.w, "  Dauer           : %s%s%s\n", ansiValue, duration, ansiReset)
	fmt.Fprintf(r.w, "  ETA             : %s\n", eta)
	fmt.Fprintf(r.w, "  Werte           : %s\n\n", ValuesList(est.Values))
}

func (r *TerminalRenderer) RenderLabels(rows []models.LabelGroup, prices map[string]*models.PriceQuote) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s  Nach Label%s\n", ansiHeader, ansiReset)
	fmt.Fprintf(r.w, "  %s\n", thinRule)
	fmt.Fprintf(r.w, "  %-24s %6s %14s %14s %14s %s\n", "Label", "Anzahl", "Summe m3", "Buy", "Sell", "Split")
	if len(rows) == 0 {
		fmt.Fprintf(r.w, "  Keine Daten\n\n")
		return
	}
	for _, row := range rows {
		buy, sell, split := PriceCells(prices[row.Label])
		fmt.Fprintf(r.w, "  %-24s %6s %14s %14s %14s %s\n",
			truncate(row.Label, 24), Quantity(float64(row.Count)), Quantity(row.Sum), buy, sell, split)
	}
	count, sum := LabelTotals(rows)
	fmt.Fprintf(r.w, "  %s\n", thinRule)
	fmt.Fprintf(r.w, "  %s%-24s %6s %14s%s\n\n", ansiBold, "Summe",
		NonZeroOrPlaceholder(float64(count)), NonZeroOrPlaceholder(sum), ansiReset)
}

func (r *TerminalRenderer) RenderValues(rows []models.ValueGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s  Nach Wert%s\n", ansiHeader, ansiReset)
	fmt.Fprintf(r.w, "  %s\n", thinRule)
	fmt.Fprintf(r.w, "  %14s %6s %14s\n", "Wert m3", "Anzahl", "Gesamt m3")
	if len(rows) == 0 {
		fmt.Fprintf(r.w, "  Keine Daten\n\n")
		return
	}
	for _, row := range rows {
		fmt.Fprintf(r.w, "  %14s %6s %14s\n", Quantity(row.Value), Quantity(float64(row.Count)), Quantity(row.Total))
	}
	fmt.Fprintln(r.w)
}

// PriceCells returns the buy, sell and split columns for one quote.
func PriceCells(q *models.PriceQuote) (buy, sell, split string) {
	buy, sell, split = Placeholder, Placeholder, Placeholder
	if q == nil {
		return
	}
	if q.BuyMax != nil && IsFinite(*q.BuyMax) {
		buy = ISK(*q.BuyMax)
	}
	if q.SellMin != nil && IsFinite(*q.SellMin) {
		sell = ISK(*q.SellMin)
	}
	if diff, ratio, ok := q.Split(); ok && IsFinite(diff) {
		split = fmt.Sprintf("%s (%s)", ISK(diff), Percent(ratio))
	}
	return
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

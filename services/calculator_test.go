package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"m3calc/models"
	"m3calc/utils"
)

type recordingRenderer struct {
	mu        sync.Mutex
	estimates int
	labels    [][]models.LabelGroup
	prices    []map[string]*models.PriceQuote
	values    int
}

func (r *recordingRenderer) RenderEstimate(*models.Report, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.estimates++
}

func (r *recordingRenderer) RenderLabels(rows []models.LabelGroup, prices map[string]*models.PriceQuote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, rows)
	r.prices = append(r.prices, prices)
}

func (r *recordingRenderer) RenderValues([]models.ValueGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values++
}

func (r *recordingRenderer) labelRenders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.labels)
}

// stubPrices prices every label at 100 and blocks Refresh until release is closed.
type stubPrices struct {
	mu      sync.Mutex
	cache   map[string]*models.PriceQuote
	release chan struct{}
}

func newStubPrices() *stubPrices {
	return &stubPrices{cache: make(map[string]*models.PriceQuote), release: make(chan struct{})}
}

func (s *stubPrices) Refresh(ctx context.Context, labels []string) map[string]*models.PriceQuote {
	<-s.release
	sell := 100.0
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range labels {
		s.cache[l] = &models.PriceQuote{SellMin: &sell, Source: models.SourceESI}
	}
	return s.cache
}

func (s *stubPrices) Snapshot(labels []string) map[string]*models.PriceQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.PriceQuote)
	for _, l := range labels {
		if q, ok := s.cache[l]; ok {
			out[l] = q
		}
	}
	return out
}

func TestRecomputeRendersEverything(t *testing.T) {
	rr := &recordingRenderer{}
	calc := NewCalculator(utils.Discard(), rr)

	rep := calc.Recompute(models.FormState{Raw: SampleLog, Rate: "5,5", Modules: "2", Chars: "3"})
	if rep.Generation != 1 {
		t.Errorf("Generation = %d; want 1", rep.Generation)
	}
	if rr.estimates != 1 || rr.labelRenders() != 1 || rr.values != 1 {
		t.Errorf("renders = %d/%d/%d; want 1/1/1", rr.estimates, rr.labelRenders(), rr.values)
	}
	if rep.Labels[0].Label != "Griemeer" {
		t.Errorf("first row = %q; want Griemeer", rep.Labels[0].Label)
	}

	// no price source configured: enrichment completes immediately
	<-calc.EnrichAsync(rep)
	if rr.labelRenders() != 1 {
		t.Errorf("label renders after no-op enrichment = %d; want 1", rr.labelRenders())
	}
}

func TestToggleSortRerendersLastRows(t *testing.T) {
	rr := &recordingRenderer{}
	calc := NewCalculator(utils.Discard(), rr)
	calc.Recompute(models.FormState{Raw: "B\t1 m3\nA\t2 m3\nC\t3 m3"})

	st := calc.ToggleSort(models.SortByLabel)
	if st != (models.SortState{Key: models.SortByLabel, Dir: models.Asc}) {
		t.Errorf("ToggleSort(label) = %+v", st)
	}
	rows := rr.labels[len(rr.labels)-1]
	if rows[0].Label != "A" || rows[2].Label != "C" {
		t.Errorf("rows after label sort = %+v", rows)
	}
	if got := calc.Last().Labels[0].Label; got != "A" {
		t.Errorf("Last().Labels[0] = %q; want A", got)
	}

	calc.ToggleSort(models.SortByLabel)
	if got := calc.Sort(); got.Dir != models.Desc {
		t.Errorf("second toggle = %+v; want desc", got)
	}
}

func TestEnrichAsyncRerendersWithPrices(t *testing.T) {
	rr := &recordingRenderer{}
	prices := newStubPrices()
	calc := NewCalculator(utils.Discard(), rr, WithPrices(prices))

	rep := calc.Recompute(models.FormState{Raw: "Kernite\t1 m3"})
	done := calc.EnrichAsync(rep)
	close(prices.release)
	<-done

	if rr.labelRenders() != 2 {
		t.Fatalf("label renders = %d; want 2", rr.labelRenders())
	}
	last := rr.prices[len(rr.prices)-1]
	if q := last["Kernite"]; q == nil || *q.SellMin != 100 {
		t.Errorf("re-render prices = %+v; want sell 100 for Kernite", last)
	}
	if q := calc.Last().Prices["Kernite"]; q == nil {
		t.Error("Last() should carry the fetched price")
	}

	// a later recomputation picks the cached price up without fetching
	rep2 := calc.Recompute(models.FormState{Raw: "Kernite\t2 m3"})
	if rep2.Prices["Kernite"] == nil {
		t.Error("cached price missing from the next recomputation")
	}
}

func TestEnrichAsyncFreshness(t *testing.T) {
	for _, strict := range []bool{false, true} {
		rr := &recordingRenderer{}
		prices := newStubPrices()
		calc := NewCalculator(utils.Discard(), rr, WithPrices(prices), WithStrictFreshness(strict))

		first := calc.Recompute(models.FormState{Raw: "A\t1 m3"})
		done := calc.EnrichAsync(first)
		calc.Recompute(models.FormState{Raw: "A\t1 m3\nB\t2 m3"})
		before := rr.labelRenders()

		close(prices.release)
		<-done

		want := before + 1
		if strict {
			want = before
		}
		if got := rr.labelRenders(); got != want {
			t.Errorf("strict=%v: label renders = %d; want %d", strict, got, want)
		}
	}
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	calc := NewCalculator(utils.Discard(), NewTerminalRenderer(&buf, false),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local) }))
	calc.Recompute(models.FormState{Raw: "Griemeer\t89.722\t71.777 m3\t66 km", Rate: "5,5", Modules: "2", Chars: "3"})

	out := buf.String()
	for _, want := range []string{"71.777", "33", "36 Min 15 Sek", "Jetzt: 10:00 → Fertig um 10:36", "Griemeer", "Summe"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	calc.Recompute(models.FormState{Raw: "nothing"})
	out = buf.String()
	if !strings.Contains(out, NoValuesMessage) || !strings.Contains(out, "Keine Daten") {
		t.Errorf("empty input output:\n%s", out)
	}
}

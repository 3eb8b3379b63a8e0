package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"m3calc/models"
	"m3calc/utils"
)

// PriceRefresher looks up prices for labels. Refresh may block on the
// network; Snapshot only reads what is already cached.
type PriceRefresher interface {
	Refresh(ctx context.Context, labels []string) map[string]*models.PriceQuote
	Snapshot(labels []string) map[string]*models.PriceQuote
}

// Calculator recomputes reports from form input and enriches the label table
// with prices in the background.
type Calculator struct {
	logger   *utils.Logger
	renderer Renderer
	prices   PriceRefresher
	strict   bool
	now      func() time.Time

	gen atomic.Uint64

	mu   sync.Mutex
	sort models.SortState
	last *models.Report
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithPrices enables price enrichment.
func WithPrices(p PriceRefresher) CalculatorOption {
	return func(c *Calculator) { c.prices = p }
}

// WithStrictFreshness drops the re-render of enrichment runs that finish
// after a newer recomputation started.
func WithStrictFreshness(strict bool) CalculatorOption {
	return func(c *Calculator) { c.strict = strict }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator creates a Calculator. renderer may be nil.
func NewCalculator(logger *utils.Logger, renderer Renderer, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		logger:   logger,
		renderer: renderer,
		now:      time.Now,
		sort:     models.DefaultSort(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recompute runs the whole synchronous pipeline for form and renders it.
// Cached prices are attached; nothing is fetched.
func (c *Calculator) Recompute(form models.FormState) *models.Report {
	now := c.now()
	rep := Compute(form, now)
	rep.Generation = c.gen.Add(1)
	if c.prices != nil {
		rep.Prices = c.prices.Snapshot(rep.LabelNames())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = rep
	rep.Labels = SortLabelRows(rep.Labels, c.sort)

	c.logger.Debug("[calc] Run %d: %d values, sum %.3f, rate %.3f", rep.Generation,
		len(rep.Estimate.Values), rep.Estimate.SumVolume, rep.Estimate.EffRate)

	if c.renderer != nil {
		c.renderer.RenderEstimate(rep, now)
		c.renderer.RenderLabels(rep.Labels, rep.Prices)
		c.renderer.RenderValues(rep.Values)
	}
	return cloneReport(rep)
}

// EnrichAsync starts a detached price refresh for the labels of rep. The
// returned channel is closed once the refresh and any re-render are done.
// Superseded runs are not cancelled.
func (c *Calculator) EnrichAsync(rep *models.Report) <-chan struct{} {
	done := make(chan struct{})
	if c.prices == nil || rep == nil || len(rep.Labels) == 0 {
		close(done)
		return done
	}

	labels := rep.LabelNames()
	gen := rep.Generation
	go func() {
		defer close(done)
		c.prices.Refresh(context.Background(), labels)

		if c.strict && gen != c.gen.Load() {
			c.logger.Debug("[calc] Run %d superseded, skipping price re-render", gen)
			return
		}
		c.rerender()
	}()
	return done
}

// ToggleSort applies a header click on key and re-renders the label table.
func (c *Calculator) ToggleSort(key models.SortKey) models.SortState {
	c.mu.Lock()
	st := c.sort.Toggle(key)
	c.mu.Unlock()
	c.SetSort(st)
	return st
}

// SetSort replaces the sort state and re-renders the label table.
func (c *Calculator) SetSort(st models.SortState) {
	c.mu.Lock()
	c.sort = st
	c.mu.Unlock()
	c.rerender()
}

// Sort returns the current sort state.
func (c *Calculator) Sort() models.SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// Last returns a copy of the most recent report, or nil.
func (c *Calculator) Last() *models.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneReport(c.last)
}

// rerender draws the latest rows with whatever prices are cached now.
func (c *Calculator) rerender() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return
	}
	c.last.Labels = SortLabelRows(c.last.Labels, c.sort)
	if c.prices != nil {
		c.last.Prices = c.prices.Snapshot(c.last.LabelNames())
	}
	if c.renderer != nil {
		c.renderer.RenderLabels(c.last.Labels, c.last.Prices)
	}
}

func cloneReport(r *models.Report) *models.Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Labels = append([]models.LabelGroup(nil), r.Labels...)
	out.Values = append([]models.ValueGroup(nil), r.Values...)
	out.Prices = make(map[string]*models.PriceQuote, len(r.Prices))
	for k, v := range r.Prices {
		out.Prices[k] = v
	}
	return &out
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// UnlabeledPlaceholder is used as the label of lines whose first field is empty.
const UnlabeledPlaceholder = "—"

// FormState is the calculator input as typed by the user. All fields are raw text.
type FormState struct {
	Raw     string `json:"raw"`
	Rate    string `json:"rate"`
	Modules string `json:"modules"`
	Chars   string `json:"chars"`
}

// ResetRates clears the throughput inputs but keeps the pasted text.
func (f *FormState) ResetRates() {
	f.Rate = ""
	f.Modules = ""
	f.Chars = ""
}

// LabelGroup accumulates every m3 value found on lines sharing a label.
type LabelGroup struct {
	Label string  `json:"label"`
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// ValueGroup counts occurrences of one distinct m3 value.
type ValueGroup struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Estimate is the outcome of one recomputation. Seconds is NaN when no
// duration can be derived.
type Estimate struct {
	Values    []float64
	SumVolume float64
	EffRate   float64
	Seconds   float64
}

// Report is a snapshot of one recomputation plus whatever prices were known.
type Report struct {
	ID         uuid.UUID
	Generation uint64
	CreatedAt  time.Time
	Form       FormState
	Estimate   Estimate
	Labels     []LabelGroup
	Values     []ValueGroup
	Prices     map[string]*PriceQuote
}

// LabelNames returns the labels of the report in row order.
func (r *Report) LabelNames() []string {
	out := make([]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		out = append(out, l.Label)
	}
	return out
}

// RunSummary is one stored report as listed by a sink.
type RunSummary struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	SumVolume  float64   `json:"sumVolume"`
	EffRate    float64   `json:"effRate"`
	Seconds    *float64  `json:"seconds"`
	ValueCount int       `json:"valueCount"`
	LabelCount int       `json:"labelCount"`
}

package api

import (
	"time"

	"m3calc/models"
	"m3calc/services"
)

type calculateRequest struct {
	Raw     string `json:"raw"`
	Rate    string `json:"rate"`
	Modules string `json:"modules"`
	Chars   string `json:"chars"`
}

func (r calculateRequest) form() models.FormState {
	return models.FormState{Raw: r.Raw, Rate: r.Rate, Modules: r.Modules, Chars: r.Chars}
}

// Numbers that can be NaN or infinite are sent as null.
type estimateDTO struct {
	SumVolume *float64  `json:"sumVolume"`
	EffRate   *float64  `json:"effRate"`
	Seconds   *float64  `json:"seconds"`
	Values    []float64 `json:"values"`
}

type displayDTO struct {
	SumVolume string `json:"sumVolume"`
	EffRate   string `json:"effRate"`
	Duration  string `json:"duration"`
	HMS       string `json:"hms"`
	ETA       string `json:"eta"`
	Values    string `json:"values"`
}

type labelRowDTO struct {
	Label string             `json:"label"`
	Count int                `json:"count"`
	Sum   float64            `json:"sum"`
	Price *models.PriceQuote `json:"price"`
	Buy   string             `json:"buy"`
	Sell  string             `json:"sell"`
	Split string             `json:"split"`
}

type totalsDTO struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
}

type reportDTO struct {
	ID          string              `json:"id"`
	Generation  uint64              `json:"generation"`
	CreatedAt   time.Time           `json:"createdAt"`
	Form        models.FormState    `json:"form"`
	Estimate    estimateDTO         `json:"estimate"`
	Display     displayDTO          `json:"display"`
	Sort        models.SortState    `json:"sort"`
	Labels      []labelRowDTO       `json:"labels"`
	LabelTotals totalsDTO           `json:"labelTotals"`
	Values      []models.ValueGroup `json:"values"`
	Stored      bool                `json:"stored"`
}

func finite(v float64) *float64 {
	if !services.IsFinite(v) {
		return nil
	}
	return &v
}

func orPlaceholder(s string) string {
	if s == "" {
		return services.Placeholder
	}
	return s
}

func newReportDTO(rep *models.Report, st models.SortState, now time.Time) reportDTO {
	est := rep.Estimate
	out := reportDTO{
		ID:         rep.ID.String(),
		Generation: rep.Generation,
		CreatedAt:  rep.CreatedAt,
		Form:       rep.Form,
		Estimate: estimateDTO{
			SumVolume: finite(est.SumVolume),
			EffRate:   finite(est.EffRate),
			Seconds:   finite(est.Seconds),
			Values:    append([]float64{}, est.Values...),
		},
		Display: displayDTO{
			SumVolume: services.PositiveOrPlaceholder(est.SumVolume),
			EffRate:   services.PositiveOrPlaceholder(est.EffRate),
			Duration:  services.Placeholder,
			HMS:       services.Placeholder,
			ETA:       orPlaceholder(services.ETA(now, est.Seconds)),
			Values:    services.ValuesList(est.Values),
		},
		Sort:   st,
		Labels: labelRows(rep.Labels, rep.Prices),
		Values: append([]models.ValueGroup{}, rep.Values...),
	}
	if services.IsFinite(est.Seconds) {
		out.Display.Duration = services.Verbose(est.Seconds)
		out.Display.HMS = services.HMS(est.Seconds)
	}
	out.LabelTotals.Count, out.LabelTotals.Sum = services.LabelTotals(rep.Labels)
	return out
}

func labelRows(rows []models.LabelGroup, prices map[string]*models.PriceQuote) []labelRowDTO {
	out := make([]labelRowDTO, 0, len(rows))
	for _, r := range rows {
		q := prices[r.Label]
		buy, sell, split := services.PriceCells(q)
		out = append(out, labelRowDTO{
			Label: r.Label,
			Count: r.Count,
			Sum:   r.Sum,
			Price: q,
			Buy:   buy,
			Sell:  sell,
			Split: split,
		})
	}
	return out
}

type priceDTO struct {
	Label string             `json:"label"`
	Price *models.PriceQuote `json:"price"`
	Buy   string             `json:"buy"`
	Sell  string             `json:"sell"`
	Split string             `json:"split"`
}

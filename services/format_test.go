package services

import (
	"math"
	"testing"

	"m3calc/models"
)

func TestQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{71777, "71.777"},
		{1234.5, "1.234,5"},
		{30.3030303, "30,303"},
		{0, "0"},
		{2499805, "2.499.805"},
	}
	for _, tt := range tests {
		if got := Quantity(tt.in); got != tt.want {
			t.Errorf("Quantity(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestISKAndPercent(t *testing.T) {
	if got := ISK(1234.567); got != "1.234,57 ISK" {
		t.Errorf("ISK(1234.567) = %q; want %q", got, "1.234,57 ISK")
	}
	if got := ISK(100); got != "100 ISK" {
		t.Errorf("ISK(100) = %q; want %q", got, "100 ISK")
	}
	tests := []struct {
		in   float64
		want string
	}{
		{0.1, "10,0%"},
		{0.1234, "12,3%"},
		{0, "0,0%"},
		{-0.05, "-5,0%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		in      float64
		hms     string
		verbose string
	}{
		{0, "00:00:00", "0 Sek"},
		{30.303, "00:00:30", "30 Sek"},
		{3600, "01:00:00", "1 Std 0 Sek"},
		{3725.9, "01:02:05", "1 Std 2 Min 5 Sek"},
		{90061, "25:01:01", "1 Tage 1 Std 1 Min 1 Sek"},
		{172800 + 59, "48:00:59", "2 Tage 59 Sek"},
		{-10, "00:00:00", "0 Sek"},
		{math.NaN(), "00:00:00", "0 Sek"},
	}
	for _, tt := range tests {
		if got := HMS(tt.in); got != tt.hms {
			t.Errorf("HMS(%v) = %q; want %q", tt.in, got, tt.hms)
		}
		if got := Verbose(tt.in); got != tt.verbose {
			t.Errorf("Verbose(%v) = %q; want %q", tt.in, got, tt.verbose)
		}
	}
}

func TestValuesList(t *testing.T) {
	if got := ValuesList(nil); got != NoValuesMessage {
		t.Errorf("ValuesList(nil) = %q; want %q", got, NoValuesMessage)
	}
	if got := ValuesList([]float64{71777, 2.5}); got != "71.777 | 2,5" {
		t.Errorf("ValuesList() = %q; want %q", got, "71.777 | 2,5")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := PositiveOrPlaceholder(0); got != Placeholder {
		t.Errorf("PositiveOrPlaceholder(0) = %q; want %q", got, Placeholder)
	}
	if got := NonZeroOrPlaceholder(-1); got != "-1" {
		t.Errorf("NonZeroOrPlaceholder(-1) = %q; want %q", got, "-1")
	}
}

func TestPriceCells(t *testing.T) {
	buy, sell := 90.0, 100.0
	tests := []struct {
		name                    string
		q                       *models.PriceQuote
		wantBuy, wantSell, want string
	}{
		{"unknown", nil, Placeholder, Placeholder, Placeholder},
		{"sell only", &models.PriceQuote{SellMin: &sell}, Placeholder, "100 ISK", Placeholder},
		{"both", &models.PriceQuote{BuyMax: &buy, SellMin: &sell}, "90 ISK", "100 ISK", "10 ISK (10,0%)"},
	}
	for _, tt := range tests {
		b, s, split := PriceCells(tt.q)
		if b != tt.wantBuy || s != tt.wantSell || split != tt.want {
			t.Errorf("%s: PriceCells() = %q, %q, %q; want %q, %q, %q", tt.name, b, s, split, tt.wantBuy, tt.wantSell, tt.want)
		}
	}
}

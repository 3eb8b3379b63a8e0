package services

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"71.777", 71777},
		{"1.234,56", 1234.56},
		{"5,5", 5.5},
		{"  42 ", 42},
		{"1 234,5", 1234.5},
		{"1\u00a0234", 1234},
		{"-3,25", -3.25},
		{"0", 0},
		// the German convention wins whenever it yields a number
		{"1.5", 15},
		{"1,234.56", 1.23456},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseNumberInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", ".", ",", "abc", "12abc", "Infinity", "1e400"} {
		if got := ParseNumber(in); !math.IsNaN(got) {
			t.Errorf("ParseNumber(%q) = %v; want NaN", in, got)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"2,5", 2.5},
		{float64(7), 7},
		{int64(3), 3},
		{json.Number("12.75"), 12.75},
		{true, 1},
	}
	for _, tt := range tests {
		if got := CoerceNumber(tt.in); got != tt.want {
			t.Errorf("CoerceNumber(%#v) = %v; want %v", tt.in, got, tt.want)
		}
	}
	if got := CoerceNumber(nil); !math.IsNaN(got) {
		t.Errorf("CoerceNumber(nil) = %v; want NaN", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 7.575, 71777, 1234.5, 2499805, 30.303, 999999.999} {
		s := Quantity(v)
		if got := ParseNumber(s); math.Abs(got-v) > 1e-9 {
			t.Errorf("ParseNumber(Quantity(%v)) = ParseNumber(%q) = %v; want %v", v, s, got, v)
		}
	}
}

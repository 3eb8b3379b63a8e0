package models

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestSortStateToggle(t *testing.T) {
	tests := []struct {
		name  string
		from  SortState
		click SortKey
		want  SortState
	}{
		{"same key flips desc", SortState{SortBySum, Desc}, SortBySum, SortState{SortBySum, Asc}},
		{"same key flips asc", SortState{SortByLabel, Asc}, SortByLabel, SortState{SortByLabel, Desc}},
		{"new numeric key starts desc", SortState{SortByLabel, Asc}, SortByCount, SortState{SortByCount, Desc}},
		{"label starts asc", SortState{SortBySum, Desc}, SortByLabel, SortState{SortByLabel, Asc}},
		{"label starts asc even from asc", SortState{SortByCount, Asc}, SortByLabel, SortState{SortByLabel, Asc}},
	}
	for _, tt := range tests {
		if got := tt.from.Toggle(tt.click); got != tt.want {
			t.Errorf("%s: Toggle(%s) = %+v; want %+v", tt.name, tt.click, got, tt.want)
		}
	}
}

func TestParseSortState(t *testing.T) {
	tests := []struct {
		key, dir string
		want     SortState
		wantErr  bool
	}{
		{"", "", DefaultSort(), false},
		{"label", "", SortState{SortByLabel, Asc}, false},
		{"COUNT", "asc", SortState{SortByCount, Asc}, false},
		{"price", "", SortState{}, true},
		{"sum", "sideways", SortState{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSortState(tt.key, tt.dir)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortState(%q, %q) error = %v; wantErr %v", tt.key, tt.dir, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortState(%q, %q) = %+v; want %+v", tt.key, tt.dir, got, tt.want)
		}
	}
}

func TestPriceQuoteSplit(t *testing.T) {
	q := PriceQuote{BuyMax: f(90), SellMin: f(100), Source: SourceESI}
	diff, ratio, ok := q.Split()
	if !ok || diff != 10 || math.Abs(ratio-0.1) > 1e-12 {
		t.Errorf("Split() = %v, %v, %v; want 10, 0.1, true", diff, ratio, ok)
	}

	if _, _, ok := (PriceQuote{SellMin: f(100)}).Split(); ok {
		t.Error("Split() without buy side should not be ok")
	}
	if (PriceQuote{}).HasAny() {
		t.Error("empty quote should not report HasAny")
	}
}

func TestFormStateResetRates(t *testing.T) {
	fs := FormState{Raw: "x", Rate: "1", Modules: "2", Chars: "3"}
	fs.ResetRates()
	if fs.Raw != "x" || fs.Rate != "" || fs.Modules != "" || fs.Chars != "" {
		t.Errorf("ResetRates() left %+v", fs)
	}
}

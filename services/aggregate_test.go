package services

import (
	"reflect"
	"testing"

	"m3calc/models"
)

func TestGroupByLabelScenario(t *testing.T) {
	rows := GroupByLabel("Griemeer\t89.722\t71.777 m3\t66 km")
	want := []models.LabelGroup{{Label: "Griemeer", Sum: 71777, Count: 1}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("GroupByLabel() = %+v; want %+v", rows, want)
	}
}

func TestGroupByLabelSample(t *testing.T) {
	// Rows whose middle column has three leading digits run into the volume
	// through the tab separator, e.g. "296.826\t237.460 m3" reads 296826237460.
	rows := GroupByLabel(SampleLog)
	want := []models.LabelGroup{
		{Label: "Griemeer", Sum: 586976952761, Count: 9},
		{Label: "Clear Griemeer", Sum: 421795528119, Count: 5},
		{Label: "Inky Griemeer", Sum: 261351257997, Count: 3},
		{Label: "Kernite", Sum: 335998, Count: 4},
		{Label: "Luminous Kernite", Sum: 168000, Count: 3},
		{Label: "Opaque Griemeer", Sum: 95201, Count: 2},
		{Label: "Fiery Kernite", Sum: 84000, Count: 1},
		{Label: "Resplendant Kernite", Sum: 70154, Count: 2},
		{Label: "Prismatic Gneiss", Sum: 7575, Count: 1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("GroupByLabel(SampleLog) =\n%+v\nwant\n%+v", rows, want)
	}
}

func TestGroupByLabelEdgeCases(t *testing.T) {
	text := "A\t1 m3\r\n\r\n   \n\t5 m3\nB\tno volume here\nA\t2 m3 and 3 m3\n"
	rows := GroupByLabel(text)
	want := []models.LabelGroup{
		{Label: "A", Sum: 6, Count: 3},
		{Label: models.UnlabeledPlaceholder, Sum: 5, Count: 1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("GroupByLabel() = %+v; want %+v", rows, want)
	}
}

func TestGroupByLabelTiesKeepFirstSeenOrder(t *testing.T) {
	rows := GroupByLabel("Zeta\t10 m3\nAlpha\t10 m3\nMid\t20 m3")
	got := []string{rows[0].Label, rows[1].Label, rows[2].Label}
	want := []string{"Mid", "Zeta", "Alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupByLabel() order = %v; want %v", got, want)
	}
}

func TestLabelTotalsMatchExtraction(t *testing.T) {
	for _, text := range []string{SampleLog, "A\t1 m3\n\t2 m3\nfree text 3 m3", ""} {
		count, sum := LabelTotals(GroupByLabel(text))
		values := ExtractValues(text)
		if count != len(values) || sum != SumValues(values) {
			t.Errorf("LabelTotals() = %d, %v; want %d, %v", count, sum, len(values), SumValues(values))
		}
	}
}

func TestGroupByValue(t *testing.T) {
	rows := GroupByValue([]float64{5, 10, 2, 5, 2.5})
	want := []models.ValueGroup{
		{Value: 5, Count: 2, Total: 10},
		{Value: 10, Count: 1, Total: 10},
		{Value: 2.5, Count: 1, Total: 2.5},
		{Value: 2, Count: 1, Total: 2},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("GroupByValue() = %+v; want %+v", rows, want)
	}
}

func TestGroupByValueInvariants(t *testing.T) {
	values := ExtractValues(SampleLog)
	rows := GroupByValue(values)

	var count int
	var total float64
	for _, r := range rows {
		count += r.Count
		total += r.Total
		if r.Total != r.Value*float64(r.Count) {
			t.Errorf("row %+v: Total != Value*Count", r)
		}
	}
	if count != len(values) {
		t.Errorf("sum of counts = %d; want %d", count, len(values))
	}
	if total != SumValues(values) {
		t.Errorf("sum of totals = %v; want %v", total, SumValues(values))
	}
	if rows[0].Value != 296826237460 {
		t.Errorf("rows[0].Value = %v; want 296826237460", rows[0].Value)
	}
}

func TestSortLabelRows(t *testing.T) {
	rows := []models.LabelGroup{
		{Label: "Ore 10", Sum: 5, Count: 2},
		{Label: "ore 9", Sum: 5, Count: 1},
		{Label: "Äpfel", Sum: 1, Count: 2},
		{Label: "Birne", Sum: 9, Count: 2},
	}
	tests := []struct {
		st   models.SortState
		want []string
	}{
		{models.SortState{Key: models.SortByLabel, Dir: models.Asc}, []string{"Äpfel", "Birne", "ore 9", "Ore 10"}},
		{models.SortState{Key: models.SortByLabel, Dir: models.Desc}, []string{"Ore 10", "ore 9", "Birne", "Äpfel"}},
		{models.SortState{Key: models.SortBySum, Dir: models.Desc}, []string{"Birne", "Ore 10", "ore 9", "Äpfel"}},
		{models.SortState{Key: models.SortBySum, Dir: models.Asc}, []string{"Äpfel", "ore 9", "Ore 10", "Birne"}},
		{models.SortState{Key: models.SortByCount, Dir: models.Desc}, []string{"Ore 10", "Birne", "Äpfel", "ore 9"}},
		{models.SortState{Key: models.SortByCount, Dir: models.Asc}, []string{"ore 9", "Äpfel", "Birne", "Ore 10"}},
	}
	for _, tt := range tests {
		sorted := SortLabelRows(rows, tt.st)
		got := make([]string, len(sorted))
		for i, r := range sorted {
			got[i] = r.Label
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SortLabelRows(%+v) = %v; want %v", tt.st, got, tt.want)
		}
	}
	if rows[0].Label != "Ore 10" {
		t.Error("SortLabelRows modified its input")
	}
}

func TestSortRestoresDefaultOrder(t *testing.T) {
	original := GroupByLabel(SampleLog)
	tests := []struct {
		key   models.SortKey
		want  models.SortState
		first string
	}{
		{models.SortByLabel, models.SortState{Key: models.SortByLabel, Dir: models.Asc}, "Clear Griemeer"},
		{models.SortByCount, models.SortState{Key: models.SortByCount, Dir: models.Desc}, "Griemeer"},
		{models.SortByCount, models.SortState{Key: models.SortByCount, Dir: models.Asc}, "Fiery Kernite"},
		{models.SortBySum, models.DefaultSort(), "Griemeer"},
	}

	st := models.DefaultSort()
	rows := original
	for _, tt := range tests {
		st = st.Toggle(tt.key)
		if st != tt.want {
			t.Fatalf("Toggle(%s) = %+v; want %+v", tt.key, st, tt.want)
		}
		rows = SortLabelRows(rows, st)
		if rows[0].Label != tt.first {
			t.Errorf("after Toggle(%s) first row = %q; want %q", tt.key, rows[0].Label, tt.first)
		}
	}
	if !reflect.DeepEqual(rows, original) {
		t.Errorf("re-sorting by sum desc did not restore the original order:\n%+v", rows)
	}
}

func TestCompareLabels(t *testing.T) {
	if CompareLabels("item 2", "Item 10") >= 0 {
		t.Error(`CompareLabels("item 2", "Item 10") should be negative`)
	}
	if CompareLabels("Öl", "ol") != 0 {
		t.Error(`CompareLabels("Öl", "ol") should ignore accents and case`)
	}
}

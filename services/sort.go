package services

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"m3calc/models"
)

// newLabelCollator compares labels the way a German reader expects: case and
// accents ignored, digit runs compared by numeric value ("Ore 9" < "Ore 10").
// Collators keep internal buffers, so each sort gets its own.
func newLabelCollator() *collate.Collator {
	return collate.New(language.German, collate.Numeric, collate.Loose)
}

// CompareLabels orders two labels with the label collator.
func CompareLabels(a, b string) int {
	return newLabelCollator().CompareString(a, b)
}

// SortLabelRows returns a sorted copy of rows. Numeric keys fall back to the
// label, in the same direction, when equal.
func SortLabelRows(rows []models.LabelGroup, st models.SortState) []models.LabelGroup {
	out := make([]models.LabelGroup, len(rows))
	copy(out, rows)

	mul := -1
	if st.Dir == models.Asc {
		mul = 1
	}
	col := newLabelCollator()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var c int
		switch st.Key {
		case models.SortByCount:
			c = compareNumbers(float64(a.Count), float64(b.Count))
		case models.SortBySum:
			c = compareNumbers(a.Sum, b.Sum)
		}
		if c == 0 {
			c = col.CompareString(a.Label, b.Label)
		}
		return c*mul < 0
	})
	return out
}

func compareNumbers(a, b float64) int {
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

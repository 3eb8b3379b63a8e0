package services

import (
	"regexp"
	"sort"
	"strings"

	"m3calc/models"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// GroupByLabel sums the m3 values of every line under the line's first
// tab-separated field. Rows come back largest sum first; equal sums keep the
// order in which their labels first appeared.
func GroupByLabel(text string) []models.LabelGroup {
	index := make(map[string]int)
	var groups []models.LabelGroup

	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var lineSum float64
		var lineCount int
		scanValues(line, func(v float64) {
			lineSum += v
			lineCount++
		})
		if lineCount == 0 {
			continue
		}

		label := lineLabel(line)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, models.LabelGroup{Label: label})
		}
		groups[i].Sum += lineSum
		groups[i].Count += lineCount
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Sum > groups[j].Sum
	})
	return groups
}

// GroupByValue counts identical values. Rows are ordered by total, then
// count, then value, all descending.
func GroupByValue(values []float64) []models.ValueGroup {
	index := make(map[float64]int)
	var groups []models.ValueGroup

	for _, v := range values {
		i, ok := index[v]
		if !ok {
			i = len(groups)
			index[v] = i
			groups = append(groups, models.ValueGroup{Value: v})
		}
		groups[i].Count++
		groups[i].Total += v
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Value > b.Value
	})
	return groups
}

// LabelTotals returns the footer row of the label table.
func LabelTotals(rows []models.LabelGroup) (count int, sum float64) {
	for _, r := range rows {
		count += r.Count
		sum += r.Sum
	}
	return count, sum
}

func lineLabel(line string) string {
	first, _, _ := strings.Cut(line, "\t")
	if label := strings.TrimSpace(first); label != "" {
		return label
	}
	return models.UnlabeledPlaceholder
}

package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"m3calc/models"
)

// CSVWriter appends the label table of every report to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"run_id", "created_at", "label", "count", "sum_m3",
		"buy_max_isk", "sell_min_isk", "split_isk", "split_ratio", "price_source",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per label group. Unknown prices are left empty.
func (c *CSVWriter) Write(_ context.Context, rep *models.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	created := rep.CreatedAt.Format(time.RFC3339)
	for _, l := range rep.Labels {
		row := []string{
			rep.ID.String(),
			created,
			l.Label,
			strconv.Itoa(l.Count),
			formatFloat(l.Sum),
			"", "", "", "", "",
		}
		if q := rep.Prices[l.Label]; q != nil {
			row[5] = formatOptional(q.BuyMax)
			row[6] = formatOptional(q.SellMin)
			if diff, ratio, ok := q.Split(); ok {
				row[7] = formatFloat(diff)
				row[8] = formatFloat(ratio)
			}
			row[9] = string(q.Source)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

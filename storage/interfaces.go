package storage

import (
	"context"
	"errors"

	"m3calc/models"
)

// ReportWriter is the interface any export sink must satisfy.
type ReportWriter interface {
	Write(ctx context.Context, rep *models.Report) error
	Close() error
}

// RunLister is implemented by sinks that can list what they stored.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}

// MultiWriter sends every report to all sinks. A failing sink does not stop
// the others.
type MultiWriter struct {
	sinks []ReportWriter
}

func NewMultiWriter(sinks ...ReportWriter) *MultiWriter {
	return &MultiWriter{sinks: sinks}
}

// Add appends a sink.
func (m *MultiWriter) Add(w ReportWriter) {
	m.sinks = append(m.sinks, w)
}

func (m *MultiWriter) Len() int { return len(m.sinks) }

func (m *MultiWriter) Write(ctx context.Context, rep *models.Report) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Lister returns the first sink that can list runs, or nil.
func (m *MultiWriter) Lister() RunLister {
	for _, s := range m.sinks {
		if l, ok := s.(RunLister); ok {
			return l
		}
	}
	return nil
}

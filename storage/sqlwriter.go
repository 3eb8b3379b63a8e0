package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"m3calc/models"
)

const (
	runsTable   = "calc_runs"
	labelsTable = "calc_label_groups"
	valuesTable = "calc_value_groups"
	batchSize   = 50
)

// sqlReportWriter holds everything the Postgres and SQLite sinks share. Only
// the placeholder style and the DDL differ between them.
type sqlReportWriter struct {
	name    string
	db      *sql.DB
	builder sq.StatementBuilderType
}

func newSQLReportWriter(name string, db *sql.DB, placeholder sq.PlaceholderFormat) *sqlReportWriter {
	return &sqlReportWriter{
		name:    name,
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

func (w *sqlReportWriter) migrate(ctx context.Context, ddl []string) error {
	for _, stmt := range ddl {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: migrate: %w", w.name, err)
		}
	}
	return nil
}

// Write stores one report in a single transaction.
func (w *sqlReportWriter) Write(ctx context.Context, rep *models.Report) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", w.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	form := rep.Form
	est := rep.Estimate
	run := w.builder.Insert(runsTable).
		Columns("id", "generation", "created_at", "raw_text", "rate", "modules", "chars",
			"sum_volume", "eff_rate", "duration_seconds", "value_count").
		Values(rep.ID.String(), int64(rep.Generation), rep.CreatedAt.UTC(), form.Raw, form.Rate, form.Modules, form.Chars,
			est.SumVolume, est.EffRate, nullFloat(est.Seconds), len(est.Values))
	if err := w.exec(ctx, tx, run); err != nil {
		return fmt.Errorf("%s: insert run: %w", w.name, err)
	}

	for i := 0; i < len(rep.Labels); i += batchSize {
		end := min(i+batchSize, len(rep.Labels))
		ins := w.builder.Insert(labelsTable).
			Columns("run_id", "position", "label", "count", "sum", "buy_max", "sell_min", "price_source")
		for pos := i; pos < end; pos++ {
			l := rep.Labels[pos]
			var buy, sell sql.NullFloat64
			var source sql.NullString
			if q := rep.Prices[l.Label]; q != nil {
				buy, sell = nullFloatPtr(q.BuyMax), nullFloatPtr(q.SellMin)
				source = sql.NullString{String: string(q.Source), Valid: true}
			}
			ins = ins.Values(rep.ID.String(), pos, l.Label, l.Count, l.Sum, buy, sell, source)
		}
		if err := w.exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("%s: insert label groups: %w", w.name, err)
		}
	}

	for i := 0; i < len(rep.Values); i += batchSize {
		end := min(i+batchSize, len(rep.Values))
		ins := w.builder.Insert(valuesTable).
			Columns("run_id", "position", "value", "count", "total")
		for pos := i; pos < end; pos++ {
			v := rep.Values[pos]
			ins = ins.Values(rep.ID.String(), pos, v.Value, v.Count, v.Total)
		}
		if err := w.exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("%s: insert value groups: %w", w.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", w.name, err)
	}
	return nil
}

func (w *sqlReportWriter) exec(ctx context.Context, tx *sql.Tx, q sq.InsertBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// ListRuns returns the newest runs first.
func (w *sqlReportWriter) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit < 1 {
		limit = 20
	}
	query, args, err := w.builder.
		Select("r.id", "r.created_at", "r.sum_volume", "r.eff_rate", "r.duration_seconds", "r.value_count",
			"(SELECT COUNT(*) FROM "+labelsTable+" l WHERE l.run_id = r.id)").
		From(runsTable + " r").
		OrderBy("r.created_at DESC", "r.generation DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build list query: %w", w.name, err)
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: list runs: %w", w.name, err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var (
			id       string
			created  any
			run      models.RunSummary
			duration sql.NullFloat64
		)
		if err := rows.Scan(&id, &created, &run.SumVolume, &run.EffRate, &duration, &run.ValueCount, &run.LabelCount); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", w.name, err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%s: parse run id: %w", w.name, err)
		}
		if run.CreatedAt, err = asTime(created); err != nil {
			return nil, fmt.Errorf("%s: parse created_at: %w", w.name, err)
		}
		if duration.Valid {
			d := duration.Float64
			run.Seconds = &d
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (w *sqlReportWriter) Close() error {
	return w.db.Close()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullFloatPtr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return nullFloat(*v)
}

// timeLayouts covers what drivers hand back for timestamp columns as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func asTime(v any) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"m3calc/utils"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS calc_runs (
		id               UUID PRIMARY KEY,
		generation       BIGINT           NOT NULL,
		created_at       TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		raw_text         TEXT             NOT NULL,
		rate             TEXT             NOT NULL DEFAULT '',
		modules          TEXT             NOT NULL DEFAULT '',
		chars            TEXT             NOT NULL DEFAULT '',
		sum_volume       DOUBLE PRECISION NOT NULL,
		eff_rate         DOUBLE PRECISION NOT NULL,
		duration_seconds DOUBLE PRECISION,
		value_count      INTEGER          NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS calc_label_groups (
		run_id       UUID             NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		position     INTEGER          NOT NULL,
		label        TEXT             NOT NULL,
		count        INTEGER          NOT NULL,
		sum          DOUBLE PRECISION NOT NULL,
		buy_max      DOUBLE PRECISION,
		sell_min     DOUBLE PRECISION,
		price_source VARCHAR(20),
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS calc_value_groups (
		run_id   UUID             NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		position INTEGER          NOT NULL,
		value    DOUBLE PRECISION NOT NULL,
		count    INTEGER          NOT NULL,
		total    DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calc_runs_created_at ON calc_runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_calc_label_groups_label ON calc_label_groups(label)`,
}

// PostgresWriter persists reports to PostgreSQL.
type PostgresWriter struct {
	*sqlReportWriter
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Debug("[postgres] Ping attempt %d failed: %v", i+1, err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{newSQLReportWriter("postgres", db, sq.Dollar)}
	if err := pw.migrate(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("[postgres] Connected, schema ready")
	return pw, nil
}

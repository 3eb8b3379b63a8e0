package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS calc_runs (
		id               TEXT PRIMARY KEY,
		generation       INTEGER   NOT NULL,
		created_at       TIMESTAMP NOT NULL,
		raw_text         TEXT      NOT NULL,
		rate             TEXT      NOT NULL DEFAULT '',
		modules          TEXT      NOT NULL DEFAULT '',
		chars            TEXT      NOT NULL DEFAULT '',
		sum_volume       REAL      NOT NULL,
		eff_rate         REAL      NOT NULL,
		duration_seconds REAL,
		value_count      INTEGER   NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS calc_label_groups (
		run_id       TEXT    NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		label        TEXT    NOT NULL,
		count        INTEGER NOT NULL,
		sum          REAL    NOT NULL,
		buy_max      REAL,
		sell_min     REAL,
		price_source TEXT,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS calc_value_groups (
		run_id   TEXT    NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		value    REAL    NOT NULL,
		count    INTEGER NOT NULL,
		total    REAL    NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calc_runs_created_at ON calc_runs(created_at)`,
}

// SQLiteWriter persists reports to a local SQLite file.
type SQLiteWriter struct {
	*sqlReportWriter
}

// NewSQLiteWriter opens (or creates) the database at path and prepares the schema.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// one writer at a time; also keeps the foreign_keys pragma on the only connection
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{newSQLReportWriter("sqlite", db, sq.Question)}
	if err := sw.migrate(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sw, nil
}

// Package store keeps history of comparison runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // pure Go driver, без cgo

	"price-recon/internal/reconcile/model"
)

var ErrRunNotFound = errors.New("run not found")

// Run — один прогон сверки с итоговыми записями.
type Run struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	SourceA   string         `json:"source_a"`
	SourceB   string         `json:"source_b"`
	Threshold float64        `json:"threshold"`
	Stats     model.Stats    `json:"stats"`
	Records   []model.Record `json:"records,omitempty"`
}

// NewRun собирает Run из результата сверки.
func NewRun(sourceA, sourceB string, res model.Result) Run {
	return Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		SourceA:   sourceA,
		SourceB:   sourceB,
		Threshold: res.Opts.Threshold,
		Stats:     res.Stats,
		Records:   res.Records,
	}
}

type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	"id" TEXT NOT NULL PRIMARY KEY,
	"created_at" DATETIME NOT NULL,
	"source_a" TEXT,
	"source_b" TEXT,
	"threshold" REAL,
	"catalog_a" INTEGER,
	"catalog_b" INTEGER,
	"unique_a" INTEGER,
	"duplicates_a" INTEGER,
	"matched" INTEGER,
	"below_threshold" INTEGER,
	"invalid_prices" INTEGER
);
CREATE TABLE IF NOT EXISTS records (
	"run_id" TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	"pos" INTEGER NOT NULL,
	"product_name_a" TEXT,
	"product_name_b" TEXT,
	"price_a" TEXT,
	"price_b" TEXT,
	"price_diff" TEXT,
	"unit_price_a" TEXT,
	"unit_price_b" TEXT,
	"unit_price_diff" TEXT,
	"matching_score" REAL,
	PRIMARY KEY (run_id, pos)
);`

// Open открывает (и при необходимости создаёт) базу по пути.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "create db dir %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "open sqlite")
	}
	// sqlite не любит конкурентную запись
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "ping sqlite")
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;` + schema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "create schema")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// SaveRun пишет прогон и его записи одной транзакцией.
func (s *SQLite) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	st := run.Stats
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source_a, source_b, threshold,
			catalog_a, catalog_b, unique_a, duplicates_a, matched, below_threshold, invalid_prices)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.SourceA, run.SourceB, run.Threshold,
		st.CatalogA, st.CatalogB, st.UniqueA, st.DuplicatesA, st.Matched, st.BelowThreshold, st.InvalidPrices,
	); err != nil {
		return eris.Wrapf(err, "insert run %s", run.ID)
	}

	ins, err := tx.PrepareContext(ctx, `
		INSERT INTO records (run_id, pos, product_name_a, product_name_b, price_a, price_b,
			price_diff, unit_price_a, unit_price_b, unit_price_diff, matching_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "prepare records insert")
	}
	defer ins.Close()
	for i, r := range run.Records {
		if _, err := ins.ExecContext(ctx, run.ID, i,
			r.ProductNameA, r.ProductNameB, r.PriceA, r.PriceB,
			r.PriceDiff, r.UnitPriceA, r.UnitPriceB, r.UnitPriceDiff, r.MatchingScore,
		); err != nil {
			return eris.Wrapf(err, "insert record %d", i)
		}
	}
	return eris.Wrap(tx.Commit(), "commit run")
}

const runColumns = `id, created_at, source_a, source_b, threshold,
	catalog_a, catalog_b, unique_a, duplicates_a, matched, below_threshold, invalid_prices`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.CreatedAt, &r.SourceA, &r.SourceB, &r.Threshold,
		&r.Stats.CatalogA, &r.Stats.CatalogB, &r.Stats.UniqueA, &r.Stats.DuplicatesA,
		&r.Stats.Matched, &r.Stats.BelowThreshold, &r.Stats.InvalidPrices)
	return r, err
}

// ListRuns — последние прогоны без записей, новые первыми.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "iterate runs")
}

// GetRun — прогон вместе с записями в исходном порядке.
func (s *SQLite) GetRun(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, eris.Wrapf(err, "get run %s", id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_name_a, product_name_b, price_a, price_b, price_diff,
			unit_price_a, unit_price_b, unit_price_diff, matching_score
		FROM records WHERE run_id = ? ORDER BY pos`, id)
	if err != nil {
		return Run{}, eris.Wrap(err, "query records")
	}
	defer rows.Close()
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.ProductNameA, &rec.ProductNameB, &rec.PriceA, &rec.PriceB, &rec.PriceDiff,
			&rec.UnitPriceA, &rec.UnitPriceB, &rec.UnitPriceDiff, &rec.MatchingScore); err != nil {
			return Run{}, eris.Wrap(err, "scan record")
		}
		r.Records = append(r.Records, rec)
	}
	return r, eris.Wrap(rows.Err(), "iterate records")
}

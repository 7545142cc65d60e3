package storage

// sqlite.go — ledger persistente de runs y posiciones simuladas.
//
// Dos tablas:
//   - `runs`: una fila por ejecución con los agregados finales.
//   - `positions`: una fila por trade simulado, colgando de su run.
//
// Sirve para comparar la performance de la heurística entre ejecuciones
// sin tener que re-parsear los CSVs emitidos.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyweather/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                TEXT PRIMARY KEY,
    ran_at            DATETIME NOT NULL,
    success           INTEGER  NOT NULL DEFAULT 1,
    error             TEXT,
    city              TEXT     NOT NULL,
    period            TEXT     NOT NULL,
    total_invested    REAL     NOT NULL DEFAULT 0,
    total_payout      REAL     NOT NULL DEFAULT 0,
    resolved_invested REAL     NOT NULL DEFAULT 0,
    resolved_payout   REAL     NOT NULL DEFAULT 0,
    resolved_roi      REAL     NOT NULL DEFAULT 0,
    pending_invested  REAL     NOT NULL DEFAULT 0,
    final_pnl         REAL     NOT NULL DEFAULT 0,
    final_roi         REAL     NOT NULL DEFAULT 0,
    csv_path          TEXT,
    markets_found     INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS positions (
    run_id      TEXT NOT NULL REFERENCES runs(id),
    trade_date  TEXT NOT NULL,
    market_id   TEXT NOT NULL,
    question    TEXT,
    side        TEXT NOT NULL,
    entry_price REAL NOT NULL,
    fair_price  REAL NOT NULL,
    edge        REAL NOT NULL,
    resolution  REAL,
    source      TEXT NOT NULL,
    invested    REAL NOT NULL,
    payout      REAL NOT NULL,
    pnl         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_at        ON runs(ran_at DESC);
CREATE INDEX IF NOT EXISTS idx_positions_run  ON positions(run_id);
`

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveRun persiste el run y sus posiciones en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result domain.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	success := 0
	if result.Success {
		success = 1
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, ran_at, success, error, city, period,
			 total_invested, total_payout, resolved_invested, resolved_payout,
			 resolved_roi, pending_invested, final_pnl, final_roi,
			 csv_path, markets_found)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), success, result.Error, result.City, result.Period,
		result.TotalInvested, result.TotalPayout, result.ResolvedInvested, result.ResolvedPayout,
		result.ResolvedROI, result.PendingInvested, result.FinalPnL, result.FinalROI,
		result.CSVPath, result.MarketsFound,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions
			(run_id, trade_date, market_id, question, side, entry_price,
			 fair_price, edge, resolution, source, invested, payout, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range result.Trades {
		if _, err := stmt.ExecContext(ctx,
			runID, t.Date, t.MarketID, t.Question, string(t.Side), t.EntryPrice,
			t.FairPrice, t.Edge, t.Resolution, t.Source, t.Invested, t.Payout, t.PnL,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert position %s: %w", t.MarketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

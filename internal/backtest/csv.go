package backtest

// csv.go — emisión del ledger CSV.
//
// El set de columnas y su orden son contrato externo: otras herramientas
// del repo consumen este archivo. No renombrar ni reordenar.

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// csvHeader es el orden exacto de columnas del ledger.
var csvHeader = []string{
	"Market ID",
	"Market Group",
	"Outcome Bucket",
	"Side",
	"Status",
	"Market Creation Date",
	"Start of Day Date",
	"Market Resolution Date",
	"Forecast Max Temp (F)",
	"Actual Max Temp (F)",
	"Target Fahrenheit",
	"Predicted Probability",
	"Best Entry Price",
	"Entry Time",
	"Resolution",
	"Resolution Source",
	"Time Till Resolution",
	"Invested ($)",
	"Payout ($)",
	"PnL ($)",
	"ROI (%)",
}

// writeCSV escribe el ledger completo (filas + TOTAL SUMMARY) y devuelve la
// ruta del archivo. Se escribe una sola vez al final del run.
func writeCSV(outputDir, city, targetDate string, lookbackDays int, rows []domain.BacktestRow) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("csv: mkdir %q: %w", outputDir, err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("%s_backtest_%s_lb%d.csv", city, targetDate, lookbackDays))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(csvRecord(row)); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return path, nil
}

// csvRecord formatea una fila en el orden de csvHeader.
func csvRecord(r domain.BacktestRow) []string {
	if r.Summary {
		rec := make([]string, len(csvHeader))
		rec[1] = r.MarketGroup // "TOTAL SUMMARY"
		rec[17] = fmt.Sprintf("%.2f", r.Invested)
		rec[18] = r.Payout
		rec[19] = r.PnL
		rec[20] = r.ROI
		return rec
	}

	return []string{
		r.MarketID,
		r.MarketGroup,
		r.OutcomeBucket,
		string(r.Side),
		r.Status,
		r.CreationDate,
		r.StartOfDay,
		r.ResolutionDate,
		fmt.Sprintf("%.1f", r.ForecastMaxF),
		r.ActualMaxF,
		fmt.Sprintf("%.1f", r.TargetF),
		r.PredictedProb,
		fmt.Sprintf("%.3f", r.EntryPrice),
		r.EntryTime,
		r.Resolution,
		r.ResolutionSource,
		r.TimeTillRes,
		fmt.Sprintf("%.2f", r.Invested),
		r.Payout,
		r.PnL,
		r.ROI,
	}
}

package backtest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

func TestWriteCSV_FileNameAndHeader(t *testing.T) {
	dir := t.TempDir()
	rows := []domain.BacktestRow{
		{
			MarketID:    "m1",
			MarketGroup: "Highest temperature in London on 2026-01-26?",
			Side:        domain.SideYes,
			Payout:      "2000.00",
			PnL:         "1900.00",
			ROI:         "1900.00",
			Invested:    100,
		},
	}

	path, err := writeCSV(dir, "London", "2026-01-26", 7, rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "London_backtest_2026-01-26_lb7.csv"), path)

	records := readCSV(t, path)
	require.Len(t, records, 2) // header + 1 fila
	assert.Equal(t, csvHeader, records[0])
	require.Len(t, records[1], len(csvHeader))
	assert.Equal(t, "m1", records[1][0])
	assert.Equal(t, "YES", records[1][3])
	assert.Equal(t, "100.00", records[1][17])
	assert.Equal(t, "2000.00", records[1][18])
}

func TestWriteCSV_SummaryRow(t *testing.T) {
	dir := t.TempDir()
	rows := []domain.BacktestRow{
		{MarketID: "m1", Invested: 100, Payout: "250.00", PnL: "150.00", ROI: "150.00"},
		{
			MarketGroup: "TOTAL SUMMARY",
			Summary:     true,
			Invested:    200,
			Payout:      "250.00",
			PnL:         "50.00",
			ROI:         "25.00",
		},
	}

	path, err := writeCSV(dir, "Seoul", "2026-01-26", 0, rows)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 3)

	summary := records[2]
	assert.Equal(t, "TOTAL SUMMARY", summary[1])
	assert.Empty(t, summary[0], "la fila resumen solo lleva grupo y totales")
	assert.Equal(t, "200.00", summary[17])
	assert.Equal(t, "250.00", summary[18])
	assert.Equal(t, "50.00", summary[19])
	assert.Equal(t, "25.00", summary[20])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

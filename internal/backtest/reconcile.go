package backtest

// reconcile.go — reconciliación de posiciones simuladas contra la resolución
// oficial u oracular, y construcción del ledger fila-por-contrato.
//
// La lógica por día es pura: recibe el grupo ya evaluado y las posiciones
// seleccionadas, y devuelve un dayResult que el engine pliega en los totales
// del run. Así se testea sin el loop de fechas alrededor.

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// Proveniencia de la resolución de una fila.
const (
	sourceOfficial  = "OFFICIAL"
	sourceSimulated = "SIMULATED"
	sourcePending   = "PENDING"
)

// dayResult es la contribución de un día (ciudad, fecha) al run.
type dayResult struct {
	rows   []domain.BacktestRow
	trades []domain.TradeSummary

	resolvedInvested float64
	resolvedPayout   float64
	pendingInvested  float64

	marketsFound     int
	marketsProcessed int
}

// reconcileGroup produce las filas del ledger para el grupo completo de un
// día. Todos los contratos descubiertos reciben fila (contexto completo del
// grupo); solo los seleccionados llevan invested/payout/pnl distintos de cero.
func reconcileGroup(
	cfg Config,
	city, date string,
	group []domain.GroupResult,
	selected []domain.SelectedTrade,
	obs domain.Observation,
	isFuture bool,
) dayResult {
	byMarket := make(map[string]domain.SelectedTrade, len(selected))
	for _, t := range selected {
		byMarket[t.MarketID] = t
	}

	marketGroup := fmt.Sprintf("Highest temperature in %s on %s?", city, date)
	out := dayResult{marketsFound: len(group), marketsProcessed: len(group)}

	for _, g := range group {
		trade, isSelected := byMarket[g.Market.ID]

		resolution, source := resolveMarket(g.Market, obs, isFuture)

		row := domain.BacktestRow{
			MarketID:         g.Market.ID,
			MarketGroup:      marketGroup,
			OutcomeBucket:    bucketLabel(g.Market.Question),
			Side:             domain.SideNone,
			Status:           "RESOLVED",
			CreationDate:     formatOrNA(g.Market.CreatedAt),
			StartOfDay:       date + " 00:00",
			ResolutionDate:   date + " 23:59",
			ForecastMaxF:     obs.TempMax,
			ActualMaxF:       fmt.Sprintf("%.1f", obs.TempMax),
			TargetF:          g.Threshold.Value,
			PredictedProb:    fmt.Sprintf("%d%% (%.2f)", int(g.FairPrice*100), g.FairPrice),
			EntryPrice:       g.Entry.Price,
			EntryTime:        g.Entry.Timestamp,
			Resolution:       fmt.Sprintf("%.0f", resolution),
			ResolutionSource: source,
			TimeTillRes:      "23h 59m",
			Payout:           "0.00",
			PnL:              "0.00",
			ROI:              "0.00",
		}

		if cfg.Prediction {
			row.TimeTillRes = g.Entry.Countdown
		}

		if isFuture {
			row.Status = "UNRESOLVED/ACTIVE"
			row.ActualMaxF = "PENDING"
			row.Resolution = "N/A"
			row.ResolutionSource = sourcePending
			row.Payout = "N/A"
			row.PnL = "N/A"
			row.ROI = "N/A"
		}

		if isSelected {
			row.Side = trade.Side
			row.Invested = cfg.AllocationPerTrade

			summary := domain.TradeSummary{
				Date:       date,
				MarketID:   g.Market.ID,
				Question:   g.Market.Question,
				Side:       trade.Side,
				EntryPrice: trade.Price,
				FairPrice:  g.FairPrice,
				Edge:       trade.Edge,
				Source:     source,
				Invested:   cfg.AllocationPerTrade,
			}

			if isFuture {
				out.pendingInvested += cfg.AllocationPerTrade
				summary.Source = sourcePending
			} else {
				shares := cfg.AllocationPerTrade / trade.Price
				outcomeValue := resolution
				if trade.Side == domain.SideNo {
					outcomeValue = 1 - resolution
				}
				payout := shares * outcomeValue
				pnl := payout - cfg.AllocationPerTrade

				out.resolvedInvested += cfg.AllocationPerTrade
				out.resolvedPayout += payout

				row.Payout = fmt.Sprintf("%.2f", payout)
				row.PnL = fmt.Sprintf("%.2f", pnl)
				row.ROI = fmt.Sprintf("%.2f", pnl/cfg.AllocationPerTrade*100)

				summary.Resolution = resolution
				summary.Payout = payout
				summary.PnL = pnl
			}

			out.trades = append(out.trades, summary)
		}

		out.rows = append(out.rows, row)
	}

	return out
}

// resolveMarket determina el outcome de un contrato. El cierre oficial del
// mercado (precio final ≥0.99 o ≤0.01) tiene precedencia; si no es
// concluyente se cae al oráculo de clima.
func resolveMarket(m domain.Market, obs domain.Observation, isFuture bool) (float64, string) {
	if isFuture {
		return 0, sourcePending
	}
	if official, ok := m.OfficialResolution(); ok {
		return official, sourceOfficial
	}
	return domain.DetermineResolution(obs, m.Question), sourceSimulated
}

// bucketLabel extrae la etiqueta del bucket de la pregunta:
// "Will the highest temperature in Seoul be 75°F on January 26?" → "75°F".
func bucketLabel(question string) string {
	s := question
	if idx := strings.LastIndex(s, " be "); idx >= 0 {
		s = s[idx+len(" be "):]
	}
	if idx := strings.Index(s, " on "); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimRight(s, "? ")
}

func formatOrNA(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02 15:04")
}

package backtest

// engine.go — orquestador del backtest cross-sectional.
//
// Un run procesa las fechas del rango estrictamente en orden:
// DISCOVER → FILTER → PRICE_ALIGN → SELECT → RECONCILE por fecha,
// y después AGGREGATE → EMIT. Nada persiste entre fechas salvo los
// dayResult acumulados, que se pliegan en un paso de agregación puro.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
	"github.com/alejandrodnm/polyweather/internal/ports"
)

// Config contiene los parámetros del engine.
type Config struct {
	// AllocationPerTrade es el capital fijo por posición simulada.
	AllocationPerTrade float64
	// V2 activa el modo extendido de selección (YES sin restricción + NO).
	V2 bool
	// Prediction activa el modo forward: fechas de hoy/futuras usan el
	// proveedor de pronóstico y precios live.
	Prediction bool
	// OutputDir es el directorio donde se emite el CSV.
	OutputDir string
	// Now es inyectable para tests; si es nil se usa time.Now.
	Now func() time.Time
}

// DefaultConfig devuelve una configuración sensata.
func DefaultConfig() Config {
	return Config{
		AllocationPerTrade: 100.0,
		OutputDir:          "test-results",
	}
}

// Engine ejecuta backtests y predicciones sobre grupos de mercados de
// temperatura. Todos los colaboradores llegan inyectados; el engine nunca
// toca estado global para obtenerlos.
type Engine struct {
	cfg      Config
	markets  ports.MarketProvider
	history  ports.PriceHistoryProvider
	weather  ports.HistoricalWeatherProvider
	forecast ports.ForecastProvider
	storage  ports.RunStorage // opcional
	notifier ports.Notifier   // opcional
}

// New crea un Engine con todas las dependencias inyectadas.
// storage y notifier pueden ser nil.
func New(
	cfg Config,
	markets ports.MarketProvider,
	history ports.PriceHistoryProvider,
	weather ports.HistoricalWeatherProvider,
	forecast ports.ForecastProvider,
	storage ports.RunStorage,
	notifier ports.Notifier,
) *Engine {
	if cfg.AllocationPerTrade <= 0 {
		cfg.AllocationPerTrade = 100.0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:      cfg,
		markets:  markets,
		history:  history,
		weather:  weather,
		forecast: forecast,
		storage:  storage,
		notifier: notifier,
	}
}

// RunBacktest ejecuta el backtest para la ciudad y rango
// [targetDate-lookbackDays, targetDate]. Devuelve error solo ante input
// inválido; un fallo fatal de clima histórico termina el run temprano y
// devuelve los parciales acumulados con Success=false y el mensaje en Error.
func (e *Engine) RunBacktest(ctx context.Context, city, targetDate string, lookbackDays int) (domain.RunResult, error) {
	targetDt, err := time.Parse("2006-01-02", targetDate)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("engine.RunBacktest: invalid target date %q: %w", targetDate, err)
	}
	if lookbackDays < 0 {
		return domain.RunResult{}, fmt.Errorf("engine.RunBacktest: negative lookback %d", lookbackDays)
	}

	start := targetDt.AddDate(0, 0, -lookbackDays)
	slog.Info("backtest starting",
		"city", city,
		"period", fmt.Sprintf("%s to %s", start.Format("2006-01-02"), targetDate),
		"allocation", e.cfg.AllocationPerTrade,
		"v2", e.cfg.V2,
		"prediction", e.cfg.Prediction,
	)

	var (
		days     []dayResult
		fatalErr error
	)

	for offset := lookbackDays; offset >= 0; offset-- {
		date := targetDt.AddDate(0, 0, -offset)

		day, err := e.processDate(ctx, city, date)
		if err != nil {
			fatalErr = err
			slog.Error("fatal error, returning partial results",
				"city", city,
				"date", date.Format("2006-01-02"),
				"err", err,
			)
			break
		}
		days = append(days, day)
	}

	result := aggregate(days, city, start, targetDt)
	if fatalErr != nil {
		result.Success = false
		result.Error = fatalErr.Error()
	}

	rows := collectRows(days, result)
	if len(rows) > 0 {
		csvPath, err := writeCSV(e.cfg.OutputDir, city, targetDate, lookbackDays, rows)
		if err != nil {
			slog.Warn("csv write failed", "err", err)
		} else {
			result.CSVPath = csvPath
		}
	}

	if e.storage != nil {
		if err := e.storage.SaveRun(ctx, result); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, result, rows); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("backtest complete",
		"success", result.Success,
		"markets_found", result.MarketsFound,
		"trades", len(result.Trades),
		"final_pnl", fmt.Sprintf("%.2f", result.FinalPnL),
	)
	return result, nil
}

// processDate ejecuta DISCOVER → FILTER → PRICE_ALIGN → SELECT → RECONCILE
// para una fecha. Devuelve error solo en el caso fatal (clima histórico no
// disponible); los días sin mercados o sin pronóstico contribuyen un
// dayResult vacío.
func (e *Engine) processDate(ctx context.Context, city string, date time.Time) (dayResult, error) {
	dateStr := date.Format("2006-01-02")
	today := e.cfg.Now().Truncate(24 * time.Hour)
	isFuture := !date.Before(today)

	group, err := discoverMarkets(ctx, e.markets, city, date)
	if err != nil {
		// Los errores de búsqueda ya se reintentaron en el adapter.
		return dayResult{}, fmt.Errorf("engine.processDate %s: %w", dateStr, err)
	}
	if len(group) == 0 {
		slog.Info("no relevant markets for date", "city", city, "date", dateStr)
		return dayResult{}, nil
	}

	obs, err := e.fetchWeather(ctx, city, dateStr, isFuture)
	if err != nil {
		if isFuture {
			// Sin pronóstico no hay nada que puntuar: se salta el día.
			slog.Warn("no forecast for future date, skipping",
				"city", city, "date", dateStr, "err", err)
			return dayResult{marketsFound: len(group)}, nil
		}
		return dayResult{}, fmt.Errorf("engine.processDate %s: weather: %w", dateStr, err)
	}

	evaluated := e.evaluateGroup(ctx, group, obs, date, isFuture)
	selected := domain.SelectPositions(evaluated, e.cfg.V2)

	for _, t := range selected {
		slog.Info("position selected",
			"date", dateStr,
			"market", t.MarketID,
			"side", t.Side,
			"price", fmt.Sprintf("%.3f", t.Price),
			"edge", fmt.Sprintf("%.3f", t.Edge),
		)
	}

	return reconcileGroup(e.cfg, city, dateStr, evaluated, selected, obs, isFuture), nil
}

// fetchWeather elige la fuente según la fecha: observación histórica para
// el pasado, pronóstico para hoy y el futuro.
func (e *Engine) fetchWeather(ctx context.Context, city, date string, isFuture bool) (domain.Observation, error) {
	if isFuture {
		return e.forecast.Forecast(ctx, city, date)
	}
	obs, err := e.weather.DayWeather(ctx, city, date)
	if err != nil && errors.Is(err, domain.ErrWeatherQuota) {
		slog.Error("weather quota exhausted", "city", city, "date", date)
	}
	return obs, err
}

// evaluateGroup anota cada contrato del grupo con umbral, fair price y
// entrada alineada. Los contratos sin umbral parseable reciben la entrada
// centinela y quedan excluidos de la selección.
func (e *Engine) evaluateGroup(ctx context.Context, group []domain.Market, obs domain.Observation, date time.Time, isFuture bool) []domain.GroupResult {
	targetTS := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Unix()
	now := e.cfg.Now()
	// Precio live solo cuando la fecha objetivo es el día corriente de un
	// run de predicción; el resto alinea contra el histórico.
	live := e.cfg.Prediction && isFuture && date.Equal(now.Truncate(24*time.Hour))

	results := make([]domain.GroupResult, 0, len(group))
	for _, m := range group {
		threshold := domain.ParseThreshold(m.Question)

		var fairPrice float64
		if threshold.Valid {
			fairPrice = domain.CalculateProbability(obs, m.Question).Probability
		}

		entry := sentinelEntry()
		switch {
		case !threshold.Valid:
			// Pregunta no parseable: nunca se tradea, pero sí se reporta.
		case live && m.YesPrice > 0:
			entry = liveEntry(m, fairPrice, now)
		case m.YesTokenID() != "":
			history, err := e.history.GetPriceHistory(ctx, m.YesTokenID())
			if err != nil {
				slog.Warn("price history fetch failed",
					"market", m.ID, "err", err)
			} else {
				entry = alignEntryPrice(history, targetTS, fairPrice)
			}
			if e.cfg.Prediction {
				entry.Countdown = countdownLabel(m, now)
			}
		}

		results = append(results, domain.GroupResult{
			Market:    m,
			Entry:     entry,
			FairPrice: fairPrice,
			Threshold: threshold,
		})
	}
	return results
}

// aggregate pliega los dayResult en el resultado final del run.
// Es un paso puro: los acumuladores solo se tocan aquí, nunca desde los
// workers por fecha.
func aggregate(days []dayResult, city string, start, end time.Time) domain.RunResult {
	result := domain.RunResult{
		Success: true,
		City:    city,
		Period:  fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
	}

	for _, d := range days {
		result.ResolvedInvested += d.resolvedInvested
		result.ResolvedPayout += d.resolvedPayout
		result.PendingInvested += d.pendingInvested
		result.MarketsFound += d.marketsFound
		result.MarketsProcessed += d.marketsProcessed
		result.Trades = append(result.Trades, d.trades...)
	}

	result.TotalInvested = result.ResolvedInvested + result.PendingInvested
	result.TotalPayout = result.ResolvedPayout
	result.FinalPnL = result.TotalPayout - result.TotalInvested
	if result.TotalInvested > 0 {
		result.FinalROI = result.FinalPnL / result.TotalInvested * 100
	}
	if result.ResolvedInvested > 0 {
		result.ResolvedROI = (result.ResolvedPayout - result.ResolvedInvested) / result.ResolvedInvested * 100
	}
	return result
}

// collectRows concatena las filas de todos los días y añade la fila
// sintética TOTAL SUMMARY.
func collectRows(days []dayResult, result domain.RunResult) []domain.BacktestRow {
	var rows []domain.BacktestRow
	for _, d := range days {
		rows = append(rows, d.rows...)
	}
	if len(rows) == 0 {
		return nil
	}

	rows = append(rows, domain.BacktestRow{
		MarketGroup: "TOTAL SUMMARY",
		Summary:     true,
		Invested:    result.TotalInvested,
		Payout:      fmt.Sprintf("%.2f", result.TotalPayout),
		PnL:         fmt.Sprintf("%.2f", result.FinalPnL),
		ROI:         fmt.Sprintf("%.2f", result.FinalROI),
	})
	return rows
}

package backtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// --- mocks ---

type mockHistoryProvider struct {
	history map[string][]domain.PricePoint
	err     error
}

func (m *mockHistoryProvider) GetPriceHistory(_ context.Context, tokenID string) ([]domain.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history[tokenID], nil
}

type mockWeatherProvider struct {
	obs domain.Observation
	err error
}

func (m *mockWeatherProvider) DayWeather(_ context.Context, _, _ string) (domain.Observation, error) {
	return m.obs, m.err
}

type mockForecastProvider struct {
	obs domain.Observation
	err error
}

func (m *mockForecastProvider) Forecast(_ context.Context, _, _ string) (domain.Observation, error) {
	return m.obs, m.err
}

type mockRunStorage struct {
	saved []domain.RunResult
	err   error
}

func (m *mockRunStorage) SaveRun(_ context.Context, result domain.RunResult) error {
	m.saved = append(m.saved, result)
	return m.err
}

func (m *mockRunStorage) Close() error { return nil }

type mockNotifier struct {
	result domain.RunResult
	rows   []domain.BacktestRow
	calls  int
}

func (m *mockNotifier) Notify(_ context.Context, result domain.RunResult, rows []domain.BacktestRow) error {
	m.result = result
	m.rows = rows
	m.calls++
	return nil
}

// --- helpers ---

func londonMarket(id, bucket string) domain.Market {
	return domain.Market{
		ID:        id,
		Question:  fmt.Sprintf("Will the highest temperature in London on January 26 be %s?", bucket),
		CreatedAt: time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 26, 23, 59, 0, 0, time.UTC),
		Tokens:    [2]string{"tok-" + id, "tok-no-" + id},
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestEngine(cfg Config, mp *mockMarketProvider, hp *mockHistoryProvider, wp *mockWeatherProvider, fp *mockForecastProvider, st *mockRunStorage, n *mockNotifier) *Engine {
	if st == nil {
		return New(cfg, mp, hp, wp, fp, nil, n)
	}
	return New(cfg, mp, hp, wp, fp, st, n)
}

// --- tests ---

func TestEngine_RunBacktest_ResolvedDay(t *testing.T) {
	market := londonMarket("m1", "75°F or higher")
	targetTS := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC).Unix()

	mp := &mockMarketProvider{fallback: []domain.Market{market}}
	hp := &mockHistoryProvider{history: map[string][]domain.PricePoint{
		"tok-m1": {{Timestamp: targetTS, Price: 0.05}},
	}}
	wp := &mockWeatherProvider{obs: domain.Observation{TempMax: 78}}
	st := &mockRunStorage{}
	notifier := &mockNotifier{}

	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Now = fixedNow(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))

	engine := newTestEngine(cfg, mp, hp, wp, &mockForecastProvider{}, st, notifier)
	result, err := engine.RunBacktest(context.Background(), "London", "2026-01-26", 0)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "London", result.City)
	assert.Equal(t, "2026-01-26 to 2026-01-26", result.Period)
	assert.Equal(t, 1, result.MarketsFound)
	assert.Equal(t, 1, result.MarketsProcessed)

	// Entrada 0.05 contra fair 0.98 → YES; resuelve 1.0:
	// shares = 100/0.05 = 2000 → payout 2000, pnl 1900, roi 1900%
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, domain.SideYes, trade.Side)
	assert.InDelta(t, 0.93, trade.Edge, 0.0001)
	assert.InDelta(t, 2000.0, trade.Payout, 0.0001)

	assert.InDelta(t, 100.0, result.TotalInvested, 0.0001)
	assert.InDelta(t, 2000.0, result.TotalPayout, 0.0001)
	assert.InDelta(t, 1900.0, result.FinalPnL, 0.0001)
	assert.InDelta(t, 1900.0, result.FinalROI, 0.0001)
	assert.InDelta(t, 1900.0, result.ResolvedROI, 0.0001)

	assert.NotEmpty(t, result.CSVPath)
	assert.FileExists(t, result.CSVPath)

	require.Len(t, st.saved, 1)
	assert.Equal(t, result.FinalPnL, st.saved[0].FinalPnL)

	assert.Equal(t, 1, notifier.calls)
	require.NotEmpty(t, notifier.rows)
	last := notifier.rows[len(notifier.rows)-1]
	assert.True(t, last.Summary)
	assert.Equal(t, "TOTAL SUMMARY", last.MarketGroup)
}

func TestEngine_EvaluateGroup_UnparsableThresholdGetsSentinel(t *testing.T) {
	// Sin ningún número en la pregunta no hay umbral: entrada centinela,
	// nunca entra en selección, pero se sigue reportando en el grupo.
	weird := domain.Market{
		ID:       "m2",
		Question: "Will it be the hottest day of the year in London?",
		Tokens:   [2]string{"tok-m2", ""},
	}
	hp := &mockHistoryProvider{history: map[string][]domain.PricePoint{
		"tok-m2": {{Timestamp: 1_000_000, Price: 0.50}},
	}}

	cfg := DefaultConfig()
	cfg.Now = fixedNow(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))
	engine := newTestEngine(cfg, &mockMarketProvider{}, hp, &mockWeatherProvider{}, &mockForecastProvider{}, nil, nil)

	group := engine.evaluateGroup(context.Background(), []domain.Market{weird},
		domain.Observation{TempMax: 78}, time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC), false)

	require.Len(t, group, 1)
	assert.False(t, group[0].Threshold.Valid)
	assert.Equal(t, -1.0, group[0].Entry.Edge)
	assert.Equal(t, "N/A", group[0].Entry.Timestamp)
	assert.Empty(t, domain.SelectPositions(group, true))
}

func TestEngine_RunBacktest_WeatherQuotaReturnsPartials(t *testing.T) {
	market := londonMarket("m1", "75°F or higher")
	mp := &mockMarketProvider{fallback: []domain.Market{market}}
	wp := &mockWeatherProvider{err: fmt.Errorf("visualcrossing: %w", domain.ErrWeatherQuota)}
	notifier := &mockNotifier{}

	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Now = fixedNow(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))

	engine := newTestEngine(cfg, mp, &mockHistoryProvider{}, wp, &mockForecastProvider{}, nil, notifier)
	result, err := engine.RunBacktest(context.Background(), "London", "2026-01-26", 3)

	require.NoError(t, err, "el fallo fatal se reporta en el resultado, no como error")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "weather")
	assert.Empty(t, result.Trades)
	assert.Equal(t, 1, notifier.calls, "los parciales también se notifican")
}

func TestEngine_RunBacktest_FutureDatePending(t *testing.T) {
	market := londonMarket("m1", "75°F or higher")
	market.YesPrice = 0.05

	mp := &mockMarketProvider{fallback: []domain.Market{market}}
	fp := &mockForecastProvider{obs: domain.Observation{TempMax: 78, ForecastTime: "2026-01-26T06:00:00Z"}}
	notifier := &mockNotifier{}

	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Prediction = true
	cfg.Now = fixedNow(time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC))

	engine := newTestEngine(cfg, mp, &mockHistoryProvider{}, &mockWeatherProvider{}, fp, nil, notifier)
	result, err := engine.RunBacktest(context.Background(), "London", "2026-01-26", 0)

	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, sourcePending, result.Trades[0].Source)
	assert.InDelta(t, 100.0, result.PendingInvested, 0.0001)
	assert.InDelta(t, 100.0, result.TotalInvested, 0.0001)
	assert.Zero(t, result.TotalPayout)

	require.NotEmpty(t, notifier.rows)
	row := notifier.rows[0]
	assert.Equal(t, "UNRESOLVED/ACTIVE", row.Status)
	assert.Equal(t, "PENDING", row.ActualMaxF)
	assert.Equal(t, "LIVE", row.EntryTime)
	assert.Equal(t, "13h 59m", row.TimeTillRes, "countdown hasta el EndDate del contrato")
}

func TestEngine_RunBacktest_NoForecastSkipsDay(t *testing.T) {
	market := londonMarket("m1", "75°F or higher")
	mp := &mockMarketProvider{fallback: []domain.Market{market}}
	fp := &mockForecastProvider{err: domain.ErrNoWeatherData}
	notifier := &mockNotifier{}

	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Prediction = true
	cfg.Now = fixedNow(time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC))

	engine := newTestEngine(cfg, mp, &mockHistoryProvider{}, &mockWeatherProvider{}, fp, nil, notifier)
	result, err := engine.RunBacktest(context.Background(), "London", "2026-01-26", 0)

	require.NoError(t, err)
	assert.True(t, result.Success, "un día sin pronóstico se salta, no es fatal")
	assert.Equal(t, 1, result.MarketsFound)
	assert.Empty(t, result.Trades)
}

func TestEngine_RunBacktest_InvalidInput(t *testing.T) {
	engine := newTestEngine(DefaultConfig(), &mockMarketProvider{}, &mockHistoryProvider{},
		&mockWeatherProvider{}, &mockForecastProvider{}, nil, nil)

	_, err := engine.RunBacktest(context.Background(), "London", "26/01/2026", 0)
	assert.Error(t, err)

	_, err = engine.RunBacktest(context.Background(), "London", "2026-01-26", -1)
	assert.Error(t, err)
}

package ports

import (
	"context"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// HistoricalWeatherProvider devuelve observaciones reales de días pasados.
type HistoricalWeatherProvider interface {
	// DayWeather devuelve la observación del día (date en "YYYY-MM-DD").
	// Un 401 del proveedor se reporta como domain.ErrWeatherQuota.
	DayWeather(ctx context.Context, city, date string) (domain.Observation, error)
}

// ForecastProvider devuelve el pronóstico para hoy o días futuros,
// con la misma forma que una observación más la hora del pronóstico.
type ForecastProvider interface {
	Forecast(ctx context.Context, city, date string) (domain.Observation, error)
}

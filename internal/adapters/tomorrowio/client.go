package tomorrowio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

const (
	defaultBase  = "https://api.tomorrow.io/v4"
	forecastPath = "/weather/forecast"
)

// Client consulta la API de pronóstico de Tomorrow.io.
// Implementa ports.ForecastProvider.
type Client struct {
	http   *http.Client
	base   string
	apiKey string
}

// NewClient crea un Client. Si base está vacío usa el URL de producción.
func NewClient(base, apiKey string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		base:   base,
		apiKey: apiKey,
	}
}

// forecastResponse contiene solo la timeline diaria que consumimos.
type forecastResponse struct {
	Timelines struct {
		Daily []dailyPoint `json:"daily"`
	} `json:"timelines"`
}

type dailyPoint struct {
	Time   string `json:"time"`
	Values struct {
		TemperatureMax float64 `json:"temperatureMax"`
	} `json:"values"`
}

// Forecast devuelve el pronóstico de máxima para (ciudad, fecha) en °F.
// Si la fecha pedida no aparece en la timeline devuelve domain.ErrNoWeatherData;
// el engine salta el día sin abortar el run.
func (c *Client) Forecast(ctx context.Context, city, date string) (domain.Observation, error) {
	params := url.Values{}
	params.Set("location", city)
	params.Set("apikey", c.apiKey)
	params.Set("units", "imperial")
	params.Set("timesteps", "1d")

	reqURL := fmt.Sprintf("%s%s?%s", c.base, forecastPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Observation{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("tomorrowio.Forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Observation{}, fmt.Errorf("tomorrowio.Forecast: status %d: %s", resp.StatusCode, string(body))
	}

	var fc forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return domain.Observation{}, fmt.Errorf("tomorrowio.Forecast: decode: %w", err)
	}

	for _, day := range fc.Timelines.Daily {
		if len(day.Time) >= 10 && day.Time[:10] == date {
			return domain.Observation{
				TempMax:      day.Values.TemperatureMax,
				ForecastTime: time.Now().UTC().Format("2006-01-02 15:04"),
			}, nil
		}
	}

	return domain.Observation{}, fmt.Errorf("tomorrowio.Forecast %s %s: %w", city, date, domain.ErrNoWeatherData)
}

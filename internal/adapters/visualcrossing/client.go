package visualcrossing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

const (
	defaultBase = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

	// Backoff ante 429: 10s, 20s, 40s... hasta agotar los reintentos.
	maxRetries    = 10
	baseRetryWait = 10 * time.Second
)

// Client consulta la Timeline API de Visual Crossing para observaciones
// históricas. Implementa ports.HistoricalWeatherProvider.
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

// timelineResponse es la respuesta de la Timeline API (solo los campos usados).
type timelineResponse struct {
	Days []timelineDay `json:"days"`
}

type timelineDay struct {
	Datetime string  `json:"datetime"`
	TempMax  float64 `json:"tempmax"`
}

// DayWeather devuelve la observación de un día concreto (unitGroup=us → °F).
// Un 401 del proveedor (cuota agotada o key inválida) se devuelve como
// domain.ErrWeatherQuota: el engine lo trata como fatal para el run.
func (c *Client) DayWeather(ctx context.Context, city, date string) (domain.Observation, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("unitGroup", "us")
	params.Set("include", "days")
	params.Set("contentType", "json")

	reqURL := fmt.Sprintf("%s/%s/%s/%s?%s",
		c.base, url.PathEscape(city), date, date, params.Encode())

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return domain.Observation{}, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return domain.Observation{}, fmt.Errorf("visualcrossing.DayWeather: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			wait := baseRetryWait << attempt
			slog.Warn("visual crossing rate limited, backing off",
				"attempt", attempt+1,
				"wait", wait,
			)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return domain.Observation{}, ctx.Err()
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return domain.Observation{}, fmt.Errorf("visualcrossing.DayWeather %s %s: %w", city, date, domain.ErrWeatherQuota)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return domain.Observation{}, fmt.Errorf("visualcrossing.DayWeather: status %d: %s", resp.StatusCode, string(body))
		}

		var tl timelineResponse
		err = json.NewDecoder(resp.Body).Decode(&tl)
		resp.Body.Close()
		if err != nil {
			return domain.Observation{}, fmt.Errorf("visualcrossing.DayWeather: decode: %w", err)
		}

		if len(tl.Days) == 0 {
			return domain.Observation{}, fmt.Errorf("visualcrossing.DayWeather %s %s: %w", city, date, domain.ErrNoWeatherData)
		}
		return domain.Observation{TempMax: tl.Days[0].TempMax}, nil
	}

	return domain.Observation{}, fmt.Errorf("visualcrossing.DayWeather: exhausted %d retries", maxRetries)
}

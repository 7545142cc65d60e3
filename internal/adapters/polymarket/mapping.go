package polymarket

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// mapGammaMarkets convierte los DTOs de Gamma a domain.Market.
func mapGammaMarkets(raw []gammaMarket) []domain.Market {
	markets := make([]domain.Market, 0, len(raw))
	for _, r := range raw {
		markets = append(markets, mapGammaMarket(r))
	}
	return markets
}

// mapGammaMarket convierte un gammaMarket DTO a domain.Market.
func mapGammaMarket(r gammaMarket) domain.Market {
	m := domain.Market{
		ID:       r.ID,
		Question: r.Question,
		Slug:     r.Slug,
		YesPrice: parseYesPrice(r.OutcomePrices),
		Closed:   r.Closed,
	}

	if v, err := r.Liquidity.Float64(); err == nil {
		m.Liquidity = v
	}
	m.CreatedAt = parseGammaTime(r.CreatedAt)
	m.EndDate = parseGammaTime(r.EndDate)

	// clobTokenIds llega como `"[\"123\",\"456\"]"`
	var tokens []string
	if err := json.Unmarshal([]byte(r.ClobTokenIDs), &tokens); err == nil {
		for i, t := range tokens {
			if i >= 2 {
				break
			}
			m.Tokens[i] = t
		}
	}

	return m
}

// parseYesPrice extrae el precio YES de outcomePrices (`"[\"0.05\",\"0.95\"]"`).
// Devuelve 0.5 si el campo no es parseable.
func parseYesPrice(outcomePrices string) float64 {
	var prices []string
	if err := json.Unmarshal([]byte(outcomePrices), &prices); err != nil || len(prices) == 0 {
		return 0.5
	}
	p, err := strconv.ParseFloat(prices[0], 64)
	if err != nil {
		return 0.5
	}
	return p
}

// parseGammaTime intenta los formatos de fecha más comunes de Gamma.
func parseGammaTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

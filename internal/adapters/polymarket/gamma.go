package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

const gammaMarketsPath = "/markets"

// Search busca mercados en Gamma por query de texto libre.
// status "all" incluye mercados cerrados (necesario para backtests históricos);
// "active" limita a mercados abiertos.
func (c *Client) Search(ctx context.Context, query, status string, limit int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if status == "active" {
		params.Set("active", "true")
		params.Set("closed", "false")
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.gammaBase, gammaMarketsPath, params.Encode())

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("gamma.Search %q: %w", query, err)
	}

	markets := mapGammaMarkets(resp)
	slog.Debug("gamma search complete", "query", query, "results", len(markets))
	return markets, nil
}

// GetMarketByID resuelve un id de Gamma al mercado completo con token ids.
func (c *Client) GetMarketByID(ctx context.Context, id string) (domain.Market, error) {
	reqURL := fmt.Sprintf("%s%s/%s", c.gammaBase, gammaMarketsPath, url.PathEscape(id))

	var resp gammaMarket
	if err := c.get(ctx, c.gammaLimiter, reqURL, &resp); err != nil {
		return domain.Market{}, fmt.Errorf("gamma.GetMarketByID %q: %w", id, err)
	}
	return mapGammaMarket(resp), nil
}

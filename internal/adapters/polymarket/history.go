package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

const historyPath = "/prices-history"

// GetPriceHistory devuelve la serie completa de precios de un token del CLOB.
// Una serie vacía no es un error: significa que el contrato no tiene histórico.
func (c *Client) GetPriceHistory(ctx context.Context, tokenID string) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("market", tokenID)
	params.Set("interval", "max")
	params.Set("fidelity", "60")

	reqURL := fmt.Sprintf("%s%s?%s", c.clobBase, historyPath, params.Encode())

	var resp historyResponse
	if err := c.get(ctx, c.historyLimiter, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("clob.GetPriceHistory %q: %w", tokenID, err)
	}

	points := make([]domain.PricePoint, 0, len(resp.History))
	for _, h := range resp.History {
		p, err := h.P.Float64()
		if err != nil {
			continue
		}
		points = append(points, domain.PricePoint{Timestamp: h.T, Price: p})
	}

	slog.Debug("price history fetched", "token", tokenID, "points", len(points))
	return points, nil
}

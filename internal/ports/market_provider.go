package ports

import (
	"context"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// MarketProvider busca contratos en el servicio de descubrimiento (Gamma).
type MarketProvider interface {
	// Search devuelve los mercados que matchean la query de texto libre.
	// status es "all" o "active". El servicio no hace fuzzy matching: el
	// caller debe cubrir el recall con variantes de query.
	Search(ctx context.Context, query, status string, limit int) ([]domain.Market, error)

	// GetMarketByID resuelve un id corto de display al mercado completo
	// con sus token ids.
	GetMarketByID(ctx context.Context, id string) (domain.Market, error)
}

// PriceHistoryProvider obtiene la serie temporal de precios de un token.
type PriceHistoryProvider interface {
	// GetPriceHistory devuelve la serie completa para el token dado.
	// Una serie vacía significa "sin datos para este contrato", no un error.
	GetPriceHistory(ctx context.Context, tokenID string) ([]domain.PricePoint, error)
}

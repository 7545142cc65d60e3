package polymarket

import "encoding/json"

// DTOs raw de las APIs de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaMarket es un mercado tal como lo devuelve GET /markets de Gamma.
// Varios campos numéricos llegan como strings JSON; outcomePrices y
// clobTokenIds llegan como arrays JSON codificados dentro de un string.
type gammaMarket struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	Slug          string      `json:"slug"`
	OutcomePrices string      `json:"outcomePrices"`
	ClobTokenIDs  string      `json:"clobTokenIds"`
	Liquidity     json.Number `json:"liquidity"`
	CreatedAt     string      `json:"createdAt"`
	EndDate       string      `json:"endDate"`
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
}

// --- CLOB API ---

// historyResponse es la respuesta de GET /prices-history.
type historyResponse struct {
	History []historyPoint `json:"history"`
}

// historyPoint es un punto (t, p) de la serie de precios.
type historyPoint struct {
	T int64       `json:"t"`
	P json.Number `json:"p"`
}

package domain

import "time"

// Market representa un contrato binario (YES/NO) de temperatura en Polymarket.
// Un "grupo" es el conjunto de contratos que cubren la misma pregunta
// (ciudad + fecha) a distintos umbrales de temperatura.
type Market struct {
	ID        string
	Question  string
	Slug      string
	YesPrice  float64 // último precio del token YES (0-1, probabilidad implícita)
	Liquidity float64
	CreatedAt time.Time
	EndDate   time.Time // fecha de resolución
	Closed    bool
	Tokens    [2]string // token ids del CLOB: [YES, NO]
}

// NoPrice devuelve el precio implícito del token NO.
// Por convención no_price = 1 - yes_price; nunca se consulta por separado.
func (m Market) NoPrice() float64 {
	return 1 - m.YesPrice
}

// YesTokenID devuelve el token id del lado YES, usado para el histórico de precios.
func (m Market) YesTokenID() string {
	return m.Tokens[0]
}

// ResolutionYear devuelve el año en que el contrato resuelve.
// Prefiere EndDate y cae a CreatedAt si no está definido. Devuelve 0 si
// no hay ninguna fecha, lo que excluye el contrato en el filtrado.
func (m Market) ResolutionYear() int {
	if !m.EndDate.IsZero() {
		return m.EndDate.Year()
	}
	if !m.CreatedAt.IsZero() {
		return m.CreatedAt.Year()
	}
	return 0
}

// OfficialResolution devuelve la resolución oficial del contrato si el mercado
// está cerrado y el precio final es concluyente (≥0.99 o ≤0.01).
// El segundo valor indica si el dato oficial existe; si no, el caller debe
// caer a la resolución simulada por clima.
func (m Market) OfficialResolution() (float64, bool) {
	if !m.Closed {
		return 0, false
	}
	switch {
	case m.YesPrice >= 0.99:
		return 1.0, true
	case m.YesPrice <= 0.01:
		return 0.0, true
	}
	return 0, false
}

// PricePoint es un punto del histórico de precios de un token.
type PricePoint struct {
	Timestamp int64   // unix seconds
	Price     float64 // precio del token YES en ese instante
}

package backtest

// pricing.go — alineación de precio de entrada y countdown hasta resolución.

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// sentinelEntry es la entrada cuando no hay histórico o el precio no es
// positivo: edge -1 queda por debajo de cualquier mínimo configurable,
// así que el contrato nunca se selecciona.
func sentinelEntry() domain.EntryData {
	return domain.EntryData{
		Price:     0.5,
		Timestamp: "N/A",
		FairPrice: 0.0,
		Edge:      -1,
	}
}

// liveEntry usa el precio actual del mercado directamente (modo predicción
// sobre el día corriente).
func liveEntry(m domain.Market, fairPrice float64, now time.Time) domain.EntryData {
	return domain.EntryData{
		Price:     m.YesPrice,
		Timestamp: "LIVE",
		FairPrice: fairPrice,
		Edge:      fairPrice - m.YesPrice,
		Countdown: countdownLabel(m, now),
	}
}

// alignEntryPrice busca el punto del histórico más cercano al timestamp
// objetivo (snapshot de inicio del día). Es nearest-neighbor, no
// interpolación; ante empate gana el primer mínimo, para determinismo.
func alignEntryPrice(history []domain.PricePoint, targetTS int64, fairPrice float64) domain.EntryData {
	var closest *domain.PricePoint
	minDiff := int64(-1)

	for i := range history {
		diff := history[i].Timestamp - targetTS
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			closest = &history[i]
		}
	}

	if closest == nil || closest.Price <= 0 {
		return sentinelEntry()
	}

	return domain.EntryData{
		Price:     closest.Price,
		Timestamp: time.Unix(closest.Timestamp, 0).UTC().Format("2006-01-02 15:04"),
		FairPrice: fairPrice,
		Edge:      fairPrice - closest.Price,
	}
}

// countdownLabel formatea el tiempo restante hasta la resolución en tres
// niveles (días+horas / horas+minutos / minutos). Si la fecha de fin ya pasó
// pero el mercado no figura cerrado, devuelve "Awaiting Res"; sin fecha de
// fin conocida devuelve "Live*".
func countdownLabel(m domain.Market, now time.Time) string {
	if m.EndDate.IsZero() {
		return "Live*"
	}

	remaining := m.EndDate.Sub(now)
	if remaining <= 0 {
		if m.Closed {
			return "Resolved"
		}
		return "Awaiting Res"
	}

	switch {
	case remaining >= 24*time.Hour:
		days := int(remaining.Hours()) / 24
		hours := int(remaining.Hours()) % 24
		return fmt.Sprintf("%dd %dh", days, hours)
	case remaining >= time.Hour:
		hours := int(remaining.Hours())
		minutes := int(remaining.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", int(remaining.Minutes()))
	}
}

package ports

import (
	"context"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// RunStorage persiste el ledger de runs y posiciones simuladas.
type RunStorage interface {
	// SaveRun persiste el resultado agregado de un run y sus trades.
	SaveRun(ctx context.Context, result domain.RunResult) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	Notify(ctx context.Context, result domain.RunResult, rows []domain.BacktestRow) error
}

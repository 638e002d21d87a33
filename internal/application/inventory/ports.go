package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o el contexto expira) se hace Rollback completo: nunca hay escrituras parciales.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// Metrics puerto para instrumentar el libro. nil = sin métricas.
type Metrics interface {
	ProductCreated()
	ProductDeactivated()
	MovementRecorded(kind string, quantity int)
	InvariantViolation()
	CacheLookup(query string, hit bool)
}

type nopMetrics struct{}

func (nopMetrics) ProductCreated()              {}
func (nopMetrics) ProductDeactivated()          {}
func (nopMetrics) MovementRecorded(string, int) {}
func (nopMetrics) InvariantViolation()          {}
func (nopMetrics) CacheLookup(string, bool)     {}

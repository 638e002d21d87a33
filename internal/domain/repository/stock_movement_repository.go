package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de movimientos (sólo inserción).
// Los listados vienen ordenados del más reciente al más antiguo e incluyen ProductName.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListRecent(ctx context.Context, limit int) ([]entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID int64) ([]entity.StockMovement, error)
	// SumDelta suma +quantity (INBOUND) y -quantity (OUTBOUND) del producto.
	SumDelta(ctx context.Context, productID int64) (int64, error)
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementSelect = `
	SELECT m.id, m.kind, m.quantity, m.product_id, p.name, m.note, m.created_at
	FROM stock_movements m
	JOIN products p ON p.id = m.product_id`

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx). Sólo inserta y lee.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento. Un product_id inexistente (FK) se reporta como ErrNotFound.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (kind, quantity, product_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, m.Kind, m.Quantity, m.ProductID, m.Note, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return wrapErr("insert stock movement", err)
	}
	return nil
}

// ListRecent últimos movimientos de todos los productos.
func (r *StockMovementRepo) ListRecent(ctx context.Context, limit int) ([]entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, movementSelect+` ORDER BY m.created_at DESC, m.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, wrapErr("list recent movements", err)
	}
	return collectMovements(rows)
}

// ListByProduct historial completo de un producto, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, movementSelect+` WHERE m.product_id = $1 ORDER BY m.created_at DESC, m.id DESC`, productID)
	if err != nil {
		return nil, wrapErr("list movements by product", err)
	}
	return collectMovements(rows)
}

// SumDelta suma con signo de los movimientos del producto (0 si no hay).
func (r *StockMovementRepo) SumDelta(ctx context.Context, productID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'INBOUND' THEN quantity ELSE -quantity END), 0)::BIGINT
		FROM stock_movements WHERE product_id = $1`
	var sum int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&sum); err != nil {
		return 0, wrapErr("sum movements", err)
	}
	return sum, nil
}

func collectMovements(rows pgx.Rows) ([]entity.StockMovement, error) {
	defer rows.Close()
	list := make([]entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.Kind, &m.Quantity, &m.ProductID, &m.ProductName, &m.Note, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("read movements", err)
	}
	return list, nil
}

package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementResponse salida de un movimiento de stock.
type MovementResponse struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Quantity    int       `json:"quantity"`
	Delta       int       `json:"delta"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovementsFromEntities mapea un historial conservando el orden.
func MovementsFromEntities(movements []entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, MovementResponse{
			ID:          m.ID,
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			Delta:       m.Delta(),
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			Note:        m.Note,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}

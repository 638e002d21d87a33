package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del inventario.
// Quantity sólo cambia junto con un movimiento en stock_movements (misma transacción).
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string // clave normalizada, ver NormalizeCategory
	Price       decimal.Decimal
	Quantity    int
	MinQuantity int
	Active      bool // false = borrado lógico
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Valuation devuelve Price * Quantity.
func (p Product) Valuation() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

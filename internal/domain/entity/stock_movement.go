package entity

import "time"

// Tipos de movimiento de stock. El signo lo da el tipo; Quantity siempre es positiva.
const (
	MovementInbound  = "INBOUND"
	MovementOutbound = "OUTBOUND"
)

// Notas estándar de los movimientos generados por el libro.
const (
	NoteInitialStock    = "initial stock"
	NoteStockAdjustment = "stock adjustment"
)

// StockMovement registro inmutable de un cambio de stock.
type StockMovement struct {
	ID          int64
	Kind        string
	Quantity    int
	ProductID   int64
	ProductName string // sólo lectura (JOIN con products)
	Note        string
	CreatedAt   time.Time
}

// Delta devuelve la variación con signo: +Quantity para INBOUND, -Quantity para OUTBOUND.
func (m StockMovement) Delta() int {
	if m.Kind == MovementOutbound {
		return -m.Quantity
	}
	return m.Quantity
}

// ValidMovementKind indica si kind es INBOUND u OUTBOUND.
func ValidMovementKind(kind string) bool {
	return kind == MovementInbound || kind == MovementOutbound
}

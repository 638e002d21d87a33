package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// Status clasificación exclusiva del stock de un producto.
type Status string

const (
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusLow        Status = "LOW"
	StatusNormal     Status = "NORMAL"
)

// Statuses en orden de severidad.
var Statuses = []Status{StatusOutOfStock, StatusLow, StatusNormal}

// StatusOf: OUT_OF_STOCK si quantity == 0, LOW si quantity <= min, NORMAL en otro caso.
func StatusOf(p entity.Product) Status {
	switch {
	case p.Quantity == 0:
		return StatusOutOfStock
	case p.Quantity <= p.MinQuantity:
		return StatusLow
	default:
		return StatusNormal
	}
}

// ParseStatus acepta el nombre canónico del estado. ok=false para valores desconocidos.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

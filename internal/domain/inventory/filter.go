package inventory

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// FilterAll valor que, igual que la cadena vacía, desactiva un predicado.
const FilterAll = "all"

// ProductFilter predicados opcionales sobre productos (se combinan con AND).
type ProductFilter struct {
	Name     string // subcadena, sin distinguir mayúsculas
	Category string // se compara la clave normalizada
	Status   string // OUT_OF_STOCK | LOW | NORMAL
}

// MovementFilter predicados opcionales sobre movimientos (AND).
type MovementFilter struct {
	ProductName string // igualdad sin distinguir mayúsculas
	Kind        string // INBOUND | OUTBOUND
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, FilterAll)
}

// FilterProducts aplica los predicados presentes. Sin predicados devuelve la entrada tal cual.
// Un estado desconocido no coincide con ningún producto.
func FilterProducts(products []entity.Product, f ProductFilter) []entity.Product {
	byName, byCategory, byStatus := isSet(f.Name), isSet(f.Category), isSet(f.Status)
	if !byName && !byCategory && !byStatus {
		return products
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(f.Name))
	category := entity.NormalizeCategory(f.Category)
	status, known := ParseStatus(strings.ToUpper(strings.TrimSpace(f.Status)))

	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if byName && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		if byCategory && entity.NormalizeCategory(p.Category) != category {
			continue
		}
		if byStatus && (!known || StatusOf(p) != status) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterMovements aplica los predicados presentes sobre el historial.
func FilterMovements(movements []entity.StockMovement, f MovementFilter) []entity.StockMovement {
	byName, byKind := isSet(f.ProductName), isSet(f.Kind)
	if !byName && !byKind {
		return movements
	}
	fold := cases.Fold()
	name := fold.String(strings.TrimSpace(f.ProductName))
	kind := strings.ToUpper(strings.TrimSpace(f.Kind))

	out := make([]entity.StockMovement, 0, len(movements))
	for _, m := range movements {
		if byName && fold.String(m.ProductName) != name {
			continue
		}
		if byKind && m.Kind != kind {
			continue
		}
		out = append(out, m)
	}
	return out
}

package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Stats métricas derivadas del conjunto de productos activos.
// LowStock y OutOfStock se solapan: un producto con cantidad 0 cuenta en ambos.
type Stats struct {
	TotalProducts  int
	LowStock       int
	OutOfStock     int
	TotalValuation decimal.Decimal
}

// ComputeStats calcula Stats sobre una foto de productos activos. Sin I/O.
func ComputeStats(products []entity.Product) Stats {
	s := Stats{TotalValuation: decimal.Zero}
	for _, p := range products {
		s.TotalProducts++
		if p.Quantity <= p.MinQuantity {
			s.LowStock++
		}
		if p.Quantity == 0 {
			s.OutOfStock++
		}
		s.TotalValuation = s.TotalValuation.Add(p.Valuation())
	}
	return s
}

// StatusBreakdown cuenta productos por estado exclusivo. Todos los estados aparecen, aunque sea con 0.
func StatusBreakdown(products []entity.Product) map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		out[st] = 0
	}
	for _, p := range products {
		out[StatusOf(p)]++
	}
	return out
}

// CategoryCount cantidad de productos y valorización por categoría.
type CategoryCount struct {
	Category  string
	Products  int
	Valuation decimal.Decimal
}

// CategoryBreakdown agrupa por categoría; orden: más productos primero, luego clave ascendente.
func CategoryBreakdown(products []entity.Product) []CategoryCount {
	idx := make(map[string]int)
	var out []CategoryCount
	for _, p := range products {
		i, ok := idx[p.Category]
		if !ok {
			i = len(out)
			idx[p.Category] = i
			out = append(out, CategoryCount{Category: p.Category, Valuation: decimal.Zero})
		}
		out[i].Products++
		out[i].Valuation = out[i].Valuation.Add(p.Valuation())
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Products != out[b].Products {
			return out[a].Products > out[b].Products
		}
		return out[a].Category < out[b].Category
	})
	return out
}

// LowStockAlerts productos con quantity <= min: primero los agotados, luego por nombre.
func LowStockAlerts(products []entity.Product) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range products {
		if p.Quantity <= p.MinQuantity {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		oa, ob := out[a].Quantity == 0, out[b].Quantity == 0
		if oa != ob {
			return oa
		}
		return out[a].Name < out[b].Name
	})
	return out
}

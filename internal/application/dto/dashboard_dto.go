package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// LowStock y OutOfStock se solapan; StatusBreakdown es la clasificación exclusiva.
type DashboardSummaryDTO struct {
	TotalProducts   int                `json:"total_products"`
	LowStock        int                `json:"low_stock"`
	OutOfStock      int                `json:"out_of_stock"`
	TotalValuation  decimal.Decimal    `json:"total_valuation"`
	StatusBreakdown map[string]int     `json:"status_breakdown"`
	Categories      []CategoryCountDTO `json:"categories"`
	LowStockAlerts  []ProductResponse  `json:"low_stock_alerts"`
	RecentMovements []MovementResponse `json:"recent_movements"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// CategoryCountDTO productos y valorización de una categoría.
type CategoryCountDTO struct {
	Category  string          `json:"category"`
	Label     string          `json:"label"`
	Products  int             `json:"products"`
	Valuation decimal.Decimal `json:"valuation"`
}

// Package analytics contiene el resumen de inventario para el dashboard y los reportes.
package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	stock "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// LedgerReader lecturas del libro que necesita el dashboard (lo cumple inventory.LedgerUseCase).
type LedgerReader interface {
	ListActive(ctx context.Context) ([]entity.Product, error)
	History(ctx context.Context, productID *int64) ([]entity.StockMovement, error)
}

// DashboardUseCase genera el resumen del inventario activo.
type DashboardUseCase struct {
	ledger LedgerReader
	now    func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(ledger LedgerReader) *DashboardUseCase {
	return &DashboardUseCase{ledger: ledger, now: time.Now}
}

// Snapshot productos activos y movimientos recientes leídos para un mismo resumen.
type Snapshot struct {
	Products  []entity.Product
	Movements []entity.StockMovement
}

// Load lee productos activos e historial reciente en paralelo.
func (uc *DashboardUseCase) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := uc.ledger.ListActive(gctx)
		snap.Products = products
		return err
	})
	g.Go(func() error {
		movements, err := uc.ledger.History(gctx, nil)
		snap.Movements = movements
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// GetSummary construye el DashboardSummaryDTO: KPIs, desgloses, alertas y últimos movimientos.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	snap, err := uc.Load(ctx)
	if err != nil {
		return nil, err
	}
	return uc.Summarize(snap), nil
}

// Summarize agrega un Snapshot ya leído. Sin I/O.
func (uc *DashboardUseCase) Summarize(snap Snapshot) *dto.DashboardSummaryDTO {
	stats := stock.ComputeStats(snap.Products)

	breakdown := make(map[string]int, len(stock.Statuses))
	for st, n := range stock.StatusBreakdown(snap.Products) {
		breakdown[string(st)] = n
	}

	categories := make([]dto.CategoryCountDTO, 0)
	for _, c := range stock.CategoryBreakdown(snap.Products) {
		categories = append(categories, dto.CategoryCountDTO{
			Category:  c.Category,
			Label:     entity.CategoryLabel(c.Category),
			Products:  c.Products,
			Valuation: c.Valuation,
		})
	}

	return &dto.DashboardSummaryDTO{
		TotalProducts:   stats.TotalProducts,
		LowStock:        stats.LowStock,
		OutOfStock:      stats.OutOfStock,
		TotalValuation:  stats.TotalValuation,
		StatusBreakdown: breakdown,
		Categories:      categories,
		LowStockAlerts:  dto.ProductsFromEntities(stock.LowStockAlerts(snap.Products)),
		RecentMovements: dto.MovementsFromEntities(snap.Movements),
		GeneratedAt:     uc.now().UTC(),
	}
}

// LowStock productos activos en alerta (quantity <= min), agotados primero.
func (uc *DashboardUseCase) LowStock(ctx context.Context) ([]entity.Product, error) {
	products, err := uc.ledger.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return stock.LowStockAlerts(products), nil
}

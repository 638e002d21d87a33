package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// StockReporter genera el PDF de existencias (lo cumple pdf.StockReportGenerator).
type StockReporter interface {
	Generate(ctx context.Context, summary *dto.DashboardSummaryDTO, products []dto.ProductResponse) ([]byte, error)
}

// DashboardHandler maneja los endpoints de resumen, alertas y reporte.
type DashboardHandler struct {
	uc       *appanalytics.DashboardUseCase
	reporter StockReporter
}

// NewDashboardHandler construye el handler. reporter nil deshabilita el PDF.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, reporter StockReporter) *DashboardHandler {
	return &DashboardHandler{uc: uc, reporter: reporter}
}

// GetSummary devuelve KPIs, desgloses, alertas y últimos movimientos.
// GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// LowStock productos activos con quantity <= min, agotados primero.
// GET /api/alerts/low-stock
func (h *DashboardHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(dto.ProductsFromEntities(products)))
}

// StockReport descarga el reporte de existencias.
// GET /api/reports/stock.pdf
func (h *DashboardHandler) StockReport(c *fiber.Ctx) error {
	if h.reporter == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "REPORT_DISABLED", Message: "reporte no disponible"})
	}
	ctx := c.UserContext()
	snap, err := h.uc.Load(ctx)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.reporter.Generate(ctx, h.uc.Summarize(snap), dto.ProductsFromEntities(snap.Products))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock.pdf"`)
	return c.Send(pdf)
}

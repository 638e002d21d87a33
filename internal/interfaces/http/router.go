package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Dashboard *appanalytics.DashboardUseCase
	Reporter  StockReporter
	JWTSecret string // vacío = escrituras sin autenticación
}

// Router registra las rutas de la API. Las lecturas son públicas; las escrituras pasan por writeGuard.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	guard := writeGuard(deps.JWTSecret)

	productHandler := NewProductHandler(deps.Ledger)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/verify", productHandler.Verify)
	products.Post("/", append(guard, productHandler.Create)...)
	products.Put("/:id", append(guard, productHandler.Update)...)
	products.Delete("/:id", append(guard, productHandler.Delete)...)
	api.Get("/categories", productHandler.Categories)

	movementHandler := NewMovementHandler(deps.Ledger)
	api.Get("/movements", movementHandler.List)

	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Reporter)
	api.Get("/dashboard/summary", dashboardHandler.GetSummary)
	api.Get("/alerts/low-stock", dashboardHandler.LowStock)
	api.Get("/reports/stock.pdf", dashboardHandler.StockReport)
}

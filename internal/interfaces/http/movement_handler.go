package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	stock "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// MovementHandler expone el historial de movimientos (sólo lectura).
type MovementHandler struct {
	uc *inventory.LedgerUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.LedgerUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// List godoc
// @Summary      Historial de movimientos, del más reciente al más antiguo
// @Tags         movements
// @Produce      json
// @Param        product_id    query  int     false  "Historial completo de un producto"
// @Param        product_name  query  string  false  "Nombre exacto (sin distinguir mayúsculas)"
// @Param        kind          query  string  false  "INBOUND | OUTBOUND | all"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var productID *int64
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return badRequest(c, "INVALID_PRODUCT_ID", "product_id debe ser un entero positivo")
		}
		productID = &id
	}
	movements, err := h.uc.History(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	movements = stock.FilterMovements(movements, stock.MovementFilter{
		ProductName: c.Query("product_name"),
		Kind:        c.Query("kind"),
	})
	return c.JSON(dto.NewList(dto.MovementsFromEntities(movements)))
}

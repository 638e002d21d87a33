package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	stock "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ProductRequest entrada para crear o reemplazar un producto.
// En PUT la cantidad es la nueva cantidad absoluta: la diferencia genera el movimiento de ajuste.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
}

// ProductResponse salida de un producto, con su estado y valorización ya calculados.
type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	CategoryLabel string          `json:"category_label"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	MinQuantity   int             `json:"min_quantity"`
	Status        string          `json:"status"`
	Valuation     decimal.Decimal `json:"valuation"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductFromEntity mapea la entidad a la respuesta HTTP.
func ProductFromEntity(p entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		CategoryLabel: entity.CategoryLabel(p.Category),
		Price:         p.Price,
		Quantity:      p.Quantity,
		MinQuantity:   p.MinQuantity,
		Status:        string(stock.StatusOf(p)),
		Valuation:     p.Valuation(),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ProductsFromEntities mapea un listado.
func ProductsFromEntities(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductFromEntity(p))
	}
	return out
}

// CreatedResponse id asignado al crear.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// ReconciliationResponse resultado de verificar el libro de un producto.
type ReconciliationResponse struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	StoredQuantity int    `json:"stored_quantity"`
	LedgerQuantity int64  `json:"ledger_quantity"`
	Consistent     bool   `json:"consistent"`
}

// CategoryResponse categoría predefinida para selectores.
type CategoryResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

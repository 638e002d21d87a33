package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
// Los métodos Get* devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	// Create inserta el producto y completa ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, product *entity.Product) error
	// GetForShare obtiene un producto (activo o no) con bloqueo compartido (SELECT FOR SHARE).
	GetForShare(ctx context.Context, id int64) (*entity.Product, error)
	GetActive(ctx context.Context, id int64) (*entity.Product, error)
	// GetActiveForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetActiveForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Deactivate aplica el borrado lógico y fija UpdatedAt = at; false si no había un
	// producto activo con ese id.
	Deactivate(ctx context.Context, id int64, at time.Time) (bool, error)
	// ListActive lista productos activos ordenados por nombre.
	ListActive(ctx context.Context) ([]entity.Product, error)
	ListAll(ctx context.Context) ([]entity.Product, error)
}

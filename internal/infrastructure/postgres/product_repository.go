package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, category, price, quantity, min_quantity, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.Quantity, &p.MinQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y obtiene el id asignado por la BD.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, description, category, price, quantity, min_quantity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.Description, product.Category, product.Price,
		product.Quantity, product.MinQuantity, product.Active, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return wrapErr("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// GetForShare obtiene un producto (activo o no) con bloqueo compartido: espera a los escritores en curso.
func (r *ProductRepo) GetForShare(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product for share",
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR SHARE`, id)
}

// GetActive obtiene un producto activo por ID.
func (r *ProductRepo) GetActive(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product",
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND active`, id)
}

// GetActiveForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE) para serializar ediciones.
func (r *ProductRepo) GetActiveForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update",
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND active FOR UPDATE`, id)
}

// Update actualiza todos los campos editables. La cantidad sólo debe cambiar junto con su movimiento.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, quantity = $6, min_quantity = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Price,
		product.Quantity, product.MinQuantity, product.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update product %d: %w", product.ID, domain.ErrNotFound)
	}
	return nil
}

// Deactivate borrado lógico. Devuelve false si el producto no existe o ya estaba inactivo.
func (r *ProductRepo) Deactivate(ctx context.Context, id int64, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET active = FALSE, updated_at = $2 WHERE id = $1 AND active`, id, at)
	if err != nil {
		return false, wrapErr("deactivate product", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ProductRepo) list(ctx context.Context, op, query string) ([]entity.Product, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	list := make([]entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

// ListActive lista productos activos ordenados por nombre.
func (r *ProductRepo) ListActive(ctx context.Context) ([]entity.Product, error) {
	return r.list(ctx, "list active products",
		`SELECT `+productColumns+` FROM products WHERE active ORDER BY name, id`)
}

// ListAll lista todos los productos, incluidos los desactivados.
func (r *ProductRepo) ListAll(ctx context.Context) ([]entity.Product, error) {
	return r.list(ctx, "list products", `SELECT `+productColumns+` FROM products ORDER BY id`)
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	stock "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RecentHistoryLimit máximo de movimientos devueltos por History sin producto.
const RecentHistoryLimit = 50

// maxPrice cota exclusiva de NUMERIC(14,2).
var maxPrice = decimal.New(1, 12)

const (
	cacheKeyActive = "active"
	cacheKeyRecent = "recent"
)

// ProductInput datos de alta o edición de un producto.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Quantity    int
	MinQuantity int
}

// normalize valida la entrada antes de cualquier escritura.
func (in ProductInput) normalize() (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = entity.NormalizeCategory(in.Category)
	switch {
	case in.Name == "":
		return in, domain.Invalid("name", "requerido")
	case in.Category == "":
		return in, domain.Invalid("category", "requerida")
	case in.Category == stock.FilterAll:
		// "all" desactiva el filtro de categoría; un producto así nunca sería seleccionable.
		return in, domain.Invalid("category", "clave reservada")
	case !in.Price.IsPositive():
		return in, domain.Invalid("price", "debe ser mayor que 0")
	case in.Price.Exponent() < -2 && !in.Price.Equal(in.Price.Truncate(2)):
		return in, domain.Invalid("price", "máximo 2 decimales")
	case in.Price.GreaterThanOrEqual(maxPrice):
		return in, domain.Invalid("price", "fuera de rango")
	case in.Quantity < 0:
		return in, domain.Invalid("quantity", "no puede ser negativa")
	case in.Quantity > math.MaxInt32:
		return in, domain.Invalid("quantity", "fuera de rango")
	case in.MinQuantity < 0:
		return in, domain.Invalid("min_quantity", "no puede ser negativa")
	case in.MinQuantity > math.MaxInt32:
		return in, domain.Invalid("min_quantity", "fuera de rango")
	}
	return in, nil
}

// Reconciliation resultado de comparar la cantidad almacenada con la suma del historial.
type Reconciliation struct {
	ProductID      int64
	ProductName    string
	StoredQuantity int
	LedgerQuantity int64
}

// Consistent indica si la cantidad almacenada coincide con el historial.
func (r Reconciliation) Consistent() bool {
	return int64(r.StoredQuantity) == r.LedgerQuantity
}

// LedgerUseCase operaciones del libro de stock: alta, edición y borrado lógico de productos,
// cada cambio de cantidad acompañado de su movimiento en la misma transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	metrics     Metrics
	log         *logger.Logger

	products *versionedCache[entity.Product]
	history  *versionedCache[entity.StockMovement]
}

// NewLedgerUseCase construye el caso de uso. productRepo y movRepo son los de lectura (pool).
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	metrics Metrics,
	log *logger.Logger,
) *LedgerUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		metrics:     metrics,
		log:         log.Named("ledger"),
		products:    newVersionedCache[entity.Product](),
		history:     newVersionedCache[entity.StockMovement](),
	}
}

// ListActive lista los productos activos ordenados por nombre.
func (uc *LedgerUseCase) ListActive(ctx context.Context) ([]entity.Product, error) {
	if list, ok := uc.products.Get(cacheKeyActive); ok {
		uc.metrics.CacheLookup("products", true)
		return list, nil
	}
	uc.metrics.CacheLookup("products", false)
	version := uc.products.Version()
	list, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	uc.products.Put(cacheKeyActive, version, list)
	return list, nil
}

// Get obtiene un producto activo.
func (uc *LedgerUseCase) Get(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := uc.productRepo.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Create da de alta un producto. Si la cantidad inicial es > 0 registra un INBOUND "initial stock"
// en la misma transacción: o se guardan ambos o ninguno.
func (uc *LedgerUseCase) Create(ctx context.Context, in ProductInput) (int64, error) {
	in, err := in.normalize()
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var recorded []entity.StockMovement
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		recorded = nil
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.Quantity == 0 {
			return nil
		}
		mov, err := uc.record(ctx, movRepo, product.ID, entity.MovementInbound, product.Quantity, entity.NoteInitialStock, now)
		if err != nil {
			return err
		}
		recorded = append(recorded, *mov)
		return nil
	})
	if err != nil {
		uc.logFailure(err, "crear producto", 0)
		return 0, err
	}

	uc.committed(recorded)
	uc.metrics.ProductCreated()
	uc.log.Info().Int64("product_id", product.ID).Int("quantity", product.Quantity).Msg("producto creado")
	return product.ID, nil
}

// Update edita un producto activo. Bloquea la fila, calcula delta = nueva - anterior y, si delta != 0,
// registra el movimiento compensatorio antes de actualizar la fila del producto.
func (uc *LedgerUseCase) Update(ctx context.Context, id int64, in ProductInput) error {
	in, err := in.normalize()
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	var recorded []entity.StockMovement
	var delta int
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		recorded = nil
		current, err := productRepo.GetActiveForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		delta = in.Quantity - current.Quantity
		if delta != 0 {
			kind, qty := entity.MovementInbound, delta
			if delta < 0 {
				kind, qty = entity.MovementOutbound, -delta
			}
			mov, err := uc.record(ctx, movRepo, id, kind, qty, entity.NoteStockAdjustment, now)
			if err != nil {
				return err
			}
			recorded = append(recorded, *mov)
		}

		current.Name = in.Name
		current.Description = in.Description
		current.Category = in.Category
		current.Price = in.Price
		current.Quantity = in.Quantity
		current.MinQuantity = in.MinQuantity
		current.UpdatedAt = now
		return productRepo.Update(ctx, current)
	})
	if err != nil {
		uc.logFailure(err, "actualizar producto", id)
		return err
	}

	uc.committed(recorded)
	uc.log.Info().Int64("product_id", id).Int("delta", delta).Msg("producto actualizado")
	return nil
}

// SoftDelete desactiva el producto. No toca cantidad ni historial.
// Un segundo llamado devuelve ErrNotFound.
func (uc *LedgerUseCase) SoftDelete(ctx context.Context, id int64) error {
	ok, err := uc.productRepo.Deactivate(ctx, id, time.Now().UTC())
	if err != nil {
		uc.logFailure(err, "desactivar producto", id)
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	uc.committed(nil)
	uc.metrics.ProductDeactivated()
	uc.log.Info().Int64("product_id", id).Msg("producto desactivado")
	return nil
}

// History devuelve movimientos del más reciente al más antiguo, con el nombre del producto.
// Sin productID: como máximo RecentHistoryLimit entradas. Con productID: historial completo
// (también para productos desactivados).
func (uc *LedgerUseCase) History(ctx context.Context, productID *int64) ([]entity.StockMovement, error) {
	key := cacheKeyRecent
	if productID != nil {
		key = fmt.Sprintf("product:%d", *productID)
	}
	if list, ok := uc.history.Get(key); ok {
		uc.metrics.CacheLookup("history", true)
		return list, nil
	}
	uc.metrics.CacheLookup("history", false)

	version := uc.history.Version()
	var (
		list []entity.StockMovement
		err  error
	)
	if productID == nil {
		list, err = uc.movRepo.ListRecent(ctx, RecentHistoryLimit)
	} else {
		list, err = uc.movRepo.ListByProduct(ctx, *productID)
	}
	if err != nil {
		return nil, err
	}
	uc.history.Put(key, version, list)
	return list, nil
}

// Verify compara la cantidad almacenada con la suma con signo del historial.
// Si difieren devuelve la conciliación junto con ErrInvariantViolation; nunca corrige datos.
func (uc *LedgerUseCase) Verify(ctx context.Context, id int64) (Reconciliation, error) {
	var rec Reconciliation
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		p, err := productRepo.GetForShare(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		sum, err := movRepo.SumDelta(ctx, id)
		if err != nil {
			return err
		}
		rec = Reconciliation{ProductID: p.ID, ProductName: p.Name, StoredQuantity: p.Quantity, LedgerQuantity: sum}
		return nil
	})
	if err != nil {
		return Reconciliation{}, err
	}
	if !rec.Consistent() {
		uc.metrics.InvariantViolation()
		uc.log.Error().
			Int64("product_id", id).
			Int("stored", rec.StoredQuantity).
			Int64("ledger", rec.LedgerQuantity).
			Msg("cantidad almacenada distinta del historial")
		return rec, fmt.Errorf("producto %d: cantidad %d, historial %d: %w",
			id, rec.StoredQuantity, rec.LedgerQuantity, domain.ErrInvariantViolation)
	}
	return rec, nil
}

// VerifyAll concilia todos los productos (activos e inactivos) y devuelve sólo los inconsistentes.
func (uc *LedgerUseCase) VerifyAll(ctx context.Context) ([]Reconciliation, error) {
	all, err := uc.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	mismatches := make([]Reconciliation, 0)
	for _, p := range all {
		rec, err := uc.Verify(ctx, p.ID)
		if errors.Is(err, domain.ErrInvariantViolation) {
			mismatches = append(mismatches, rec)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return mismatches, nil
}

// record inserta un movimiento. Sólo se invoca desde Create/Update, dentro de su transacción.
func (uc *LedgerUseCase) record(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productID int64, kind string, quantity int, note string, at time.Time,
) (*entity.StockMovement, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity", "el movimiento debe ser mayor que 0")
	}
	if !entity.ValidMovementKind(kind) {
		return nil, domain.Invalid("kind", "tipo de movimiento desconocido")
	}
	mov := &entity.StockMovement{
		Kind:      kind,
		Quantity:  quantity,
		ProductID: productID,
		Note:      note,
		CreatedAt: at,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// committed invalida las caches y reporta los movimientos ya confirmados.
func (uc *LedgerUseCase) committed(recorded []entity.StockMovement) {
	uc.products.Invalidate()
	uc.history.Invalidate()
	for _, m := range recorded {
		uc.metrics.MovementRecorded(m.Kind, m.Quantity)
	}
}

func (uc *LedgerUseCase) logFailure(err error, op string, id int64) {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
		return
	}
	ev := uc.log.Error().Err(err).Str("op", op)
	if id != 0 {
		ev = ev.Int64("product_id", id)
	}
	ev.Msg("operación del libro fallida")
}

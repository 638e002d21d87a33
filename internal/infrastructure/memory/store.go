// Package memory implementa los puertos de persistencia en memoria (STORE_DRIVER=memory y tests).
// Cada transacción trabaja sobre una copia del estado y sólo la publica al confirmar.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner                 = (*Store)(nil)
	_ repository.ProductRepository       = productRepo{}
	_ repository.StockMovementRepository = movementRepo{}
)

type state struct {
	products       map[int64]entity.Product
	movements      []entity.StockMovement
	nextProductID  int64
	nextMovementID int64
}

func (s state) clone() state {
	return state{
		products:       maps.Clone(s.products),
		movements:      slices.Clone(s.movements),
		nextProductID:  s.nextProductID,
		nextMovementID: s.nextMovementID,
	}
}

// Store almacenamiento en memoria. Un único mutex serializa todas las transacciones.
type Store struct {
	mu          sync.Mutex
	state       state
	movementErr error
}

// New crea un almacenamiento vacío.
func New() *Store {
	return &Store{state: state{
		products:       make(map[int64]entity.Product),
		nextProductID:  1,
		nextMovementID: 1,
	}}
}

// FailNextMovement hace que la próxima inserción de movimiento falle con err (inyección de fallos).
func (s *Store) FailNextMovement(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movementErr = err
}

// Run ejecuta fn sobre una copia del estado; la copia sólo se publica si fn no falla
// y el contexto sigue vigente.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w: %w", domain.ErrStorageUnavailable, err)
	}

	work := s.state.clone()
	v := view{store: s, tx: &work}
	if err := fn(productRepo{v}, movementRepo{v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrStorageUnavailable, err)
	}
	s.state = work
	return nil
}

// Products repositorio de productos fuera de transacción (estado confirmado).
func (s *Store) Products() repository.ProductRepository { return productRepo{view{store: s}} }

// Movements repositorio de movimientos fuera de transacción (estado confirmado).
func (s *Store) Movements() repository.StockMovementRepository { return movementRepo{view{store: s}} }

// view accede al estado de la transacción en curso (tx != nil, el mutex ya está tomado)
// o al estado confirmado tomando el mutex.
type view struct {
	store *Store
	tx    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(&v.store.state)
}

type productRepo struct{ v view }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		p.ID = st.nextProductID
		st.nextProductID++
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) get(id int64, activeOnly bool) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if ok && (p.Active || !activeOnly) {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetForShare(_ context.Context, id int64) (*entity.Product, error) {
	return r.get(id, false)
}

func (r productRepo) GetActive(_ context.Context, id int64) (*entity.Product, error) {
	return r.get(id, true)
}

func (r productRepo) GetActiveForUpdate(_ context.Context, id int64) (*entity.Product, error) {
	return r.get(id, true)
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) Deactivate(_ context.Context, id int64, at time.Time) (bool, error) {
	var ok bool
	err := r.v.do(func(st *state) error {
		p, found := st.products[id]
		if !found || !p.Active {
			return nil
		}
		p.Active = false
		p.UpdatedAt = at
		st.products[id] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r productRepo) list(activeOnly bool) ([]entity.Product, error) {
	out := make([]entity.Product, 0)
	err := r.v.do(func(st *state) error {
		for _, p := range st.products {
			if p.Active || !activeOnly {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out, err
}

func (r productRepo) ListActive(_ context.Context) ([]entity.Product, error) { return r.list(true) }

func (r productRepo) ListAll(_ context.Context) ([]entity.Product, error) { return r.list(false) }

type movementRepo struct{ v view }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.do(func(st *state) error {
		if err := r.v.store.movementErr; err != nil {
			r.v.store.movementErr = nil
			return err
		}
		p, ok := st.products[m.ProductID]
		if !ok {
			return domain.ErrNotFound
		}
		m.ID = st.nextMovementID
		m.ProductName = p.Name
		st.nextMovementID++
		st.movements = append(st.movements, *m)
		return nil
	})
}

// newestFirst copia los movimientos que cumplen keep, con ProductName actualizado, en orden descendente.
func (r movementRepo) newestFirst(keep func(entity.StockMovement) bool) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0)
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if keep(m) {
				m.ProductName = st.products[m.ProductID].Name
				out = append(out, m)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out, err
}

func (r movementRepo) ListRecent(_ context.Context, limit int) ([]entity.StockMovement, error) {
	out, err := r.newestFirst(func(entity.StockMovement) bool { return true })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r movementRepo) ListByProduct(_ context.Context, productID int64) ([]entity.StockMovement, error) {
	return r.newestFirst(func(m entity.StockMovement) bool { return m.ProductID == productID })
}

func (r movementRepo) SumDelta(_ context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				sum += int64(m.Delta())
			}
		}
		return nil
	})
	return sum, err
}

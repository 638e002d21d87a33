package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type countingMetrics struct {
	mu         sync.Mutex
	created    int
	movements  map[string]int
	violations int
	hits       int
	misses     int
}

func (m *countingMetrics) ProductDeactivated() {}

func (m *countingMetrics) ProductCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) InvariantViolation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations++
}

func (m *countingMetrics) MovementRecorded(kind string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.movements == nil {
		m.movements = make(map[string]int)
	}
	m.movements[kind] += quantity
}

func (m *countingMetrics) CacheLookup(_ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func setup(t *testing.T) (*inventory.LedgerUseCase, *memory.Store, *countingMetrics) {
	t.Helper()
	store := memory.New()
	metrics := &countingMetrics{}
	uc := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), metrics, nil)
	return uc, store, metrics
}

func input(name string, price string, qty, min int) inventory.ProductInput {
	return inventory.ProductInput{
		Name:        name,
		Category:    "electronics",
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
		MinQuantity: min,
	}
}

func history(t *testing.T, uc *inventory.LedgerUseCase, id int64) []entity.StockMovement {
	t.Helper()
	list, err := uc.History(context.Background(), &id)
	require.NoError(t, err)
	return list
}

func sumDeltas(movs []entity.StockMovement) int {
	total := 0
	for _, m := range movs {
		total += m.Delta()
	}
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta
// ──────────────────────────────────────────────────────────────────────────────

// Ejemplo "Cable": alta con 5, ajuste a 1.
func TestLedger_EjemploCable(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	id, err := uc.Create(ctx, input("Cable", "10.00", 5, 2))
	require.NoError(t, err)

	movs := history(t, uc, id)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementInbound, movs[0].Kind)
	assert.Equal(t, 5, movs[0].Quantity)
	assert.Equal(t, entity.NoteInitialStock, movs[0].Note)
	assert.Equal(t, "Cable", movs[0].ProductName)

	require.NoError(t, uc.Update(ctx, id, input("Cable", "10.00", 1, 2)))

	movs = history(t, uc, id)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementOutbound, movs[0].Kind, "el más reciente primero")
	assert.Equal(t, 4, movs[0].Quantity)
	assert.Equal(t, entity.NoteStockAdjustment, movs[0].Note)

	p, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)
	assert.Equal(t, p.Quantity, sumDeltas(movs))
}

func TestLedger_CreateSinCantidadNoRegistraMovimiento(t *testing.T) {
	uc, _, metrics := setup(t)

	id, err := uc.Create(context.Background(), input("Vacío", "1.50", 0, 0))
	require.NoError(t, err)

	assert.Empty(t, history(t, uc, id))
	assert.Equal(t, 1, metrics.created)
	assert.Empty(t, metrics.movements)
}

func TestLedger_CreateNormalizaCategoria(t *testing.T) {
	uc, _, _ := setup(t)
	in := input("Cabo", "2", 1, 0)
	in.Category = "  Eletrônicos "

	id, err := uc.Create(context.Background(), in)
	require.NoError(t, err)

	p, err := uc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "eletronicos", p.Category)
}

func TestLedger_CreateValidacion(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()

	allCategory := input("x", "1", 1, 0)
	allCategory.Category = " ALL "

	cases := []struct {
		name  string
		field string
		in    inventory.ProductInput
	}{
		{"nombre vacío", "name", input("   ", "1", 1, 0)},
		{"precio cero", "price", input("x", "0", 1, 0)},
		{"precio con 3 decimales", "price", input("x", "10.005", 1, 0)},
		{"precio fuera de NUMERIC(14,2)", "price", input("x", "1000000000000", 1, 0)},
		{"cantidad negativa", "quantity", input("x", "1", -1, 0)},
		{"cantidad mayor que int32", "quantity", input("Big", "10", math.MaxInt32+1, 0)},
		{"mínimo negativo", "min_quantity", input("x", "1", 1, -2)},
		{"mínimo mayor que int32", "min_quantity", input("x", "1", 1, math.MaxInt32+1)},
		{"sin categoría", "category", inventory.ProductInput{Name: "x", Price: decimal.NewFromInt(1)}},
		{"categoría reservada", "category", allCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	all, err := store.Products().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "una entrada inválida no escribe nada")
}

// Los ceros a la derecha no cuentan como decimales extra.
func TestLedger_CreatePrecioConCerosFinales(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	id, err := uc.Create(ctx, input("Cable", "10.500", math.MaxInt32, 0))
	require.NoError(t, err)

	p, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, math.MaxInt32, p.Quantity)
}

// Si la inserción del movimiento inicial falla, el producto tampoco existe.
func TestLedger_CreateAtomicoAnteFallo(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()
	boom := fmt.Errorf("insert movement: %w", domain.ErrStorageUnavailable)
	store.FailNextMovement(boom)

	_, err := uc.Create(ctx, input("Huérfano", "3", 7, 1))
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	all, err := store.Products().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	recent, err := uc.History(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_UpdateSinCambioDeCantidad(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Mouse", "20", 4, 1))
	require.NoError(t, err)

	in := input("Mouse inalámbrico", "25", 4, 2)
	require.NoError(t, uc.Update(ctx, id, in))

	assert.Len(t, history(t, uc, id), 1, "delta 0 no escribe movimientos")
	p, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mouse inalámbrico", p.Name)
	assert.True(t, decimal.NewFromInt(25).Equal(p.Price))
	assert.Equal(t, 2, p.MinQuantity)
}

func TestLedger_UpdateEntrada(t *testing.T) {
	uc, _, metrics := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Teclado", "30", 0, 1))
	require.NoError(t, err)

	require.NoError(t, uc.Update(ctx, id, input("Teclado", "30", 12, 1)))

	movs := history(t, uc, id)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementInbound, movs[0].Kind)
	assert.Equal(t, 12, movs[0].Quantity)
	assert.Equal(t, 12, metrics.movements[entity.MovementInbound])
}

func TestLedger_UpdateNoEncontrado(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	err := uc.Update(ctx, 999, input("x", "1", 1, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id, err := uc.Create(ctx, input("Borrado", "1", 1, 0))
	require.NoError(t, err)
	require.NoError(t, uc.SoftDelete(ctx, id))

	err = uc.Update(ctx, id, input("Borrado", "1", 5, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, history(t, uc, id), 1)
}

func TestLedger_UpdateAtomicoAnteFallo(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Monitor", "100", 3, 1))
	require.NoError(t, err)

	store.FailNextMovement(domain.ErrStorageUnavailable)
	err = uc.Update(ctx, id, input("Monitor 27", "100", 9, 1))
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	p, err := uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, "Monitor", p.Name)
	assert.Len(t, history(t, uc, id), 1)
}

func TestLedger_ContextoCanceladoNoEscribe(t *testing.T) {
	uc, store, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Create(ctx, input("Tarde", "1", 1, 0))
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	all, err := store.Products().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

// Tras cada operación, la cantidad almacenada coincide con la suma del historial.
func TestLedger_ConsistenciaEnSecuencia(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Cable", "10", 5, 2))
	require.NoError(t, err)

	for _, qty := range []int{1, 1, 8, 0, 3, 20, 19} {
		require.NoError(t, uc.Update(ctx, id, input("Cable", "10", qty, 2)))

		rec, err := uc.Verify(ctx, id)
		require.NoError(t, err)
		assert.True(t, rec.Consistent())
		assert.Equal(t, qty, rec.StoredQuantity)
		assert.Equal(t, qty, sumDeltas(history(t, uc, id)))
	}
	for _, m := range history(t, uc, id) {
		assert.Positive(t, m.Quantity, "la magnitud nunca es negativa")
	}
}

func TestLedger_UpdatesConcurrentesMismoProducto(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Pila", "1", 10, 0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			assert.NoError(t, uc.Update(ctx, id, input("Pila", "1", qty, 0)))
		}(i)
	}
	wg.Wait()

	rec, err := uc.Verify(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado lógico e historial
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_SoftDeleteConservaHistorial(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()
	keep, err := uc.Create(ctx, input("Queda", "1", 1, 0))
	require.NoError(t, err)
	gone, err := uc.Create(ctx, input("Se va", "1", 4, 0))
	require.NoError(t, err)
	require.NoError(t, uc.Update(ctx, gone, input("Se va", "1", 2, 0)))
	before := history(t, uc, gone)
	mark := time.Now().UTC()

	require.NoError(t, uc.SoftDelete(ctx, gone))

	deactivated, err := store.Products().GetForShare(ctx, gone)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.Equal(t, 2, deactivated.Quantity)
	assert.False(t, deactivated.UpdatedAt.Before(mark), "el borrado lógico fija updated_at")
	assert.Equal(t, time.UTC, deactivated.UpdatedAt.Location())

	active, err := uc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep, active[0].ID)
	assert.Equal(t, before, history(t, uc, gone))

	_, err = uc.Get(ctx, gone)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.SoftDelete(ctx, gone), domain.ErrNotFound, "el segundo borrado no es éxito")
	assert.ErrorIs(t, uc.SoftDelete(ctx, 12345), domain.ErrNotFound)
}

func TestLedger_ListActiveOrdenadoPorNombre(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	for _, name := range []string{"Zapato", "Anillo", "Mesa"} {
		_, err := uc.Create(ctx, input(name, "1", 1, 0))
		require.NoError(t, err)
	}

	list, err := uc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Anillo", list[0].Name)
	assert.Equal(t, "Mesa", list[1].Name)
	assert.Equal(t, "Zapato", list[2].Name)
}

func TestLedger_HistorialRecienteAcotado(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Tornillo", "0.10", 1, 0))
	require.NoError(t, err)
	for qty := 2; qty <= 60; qty++ {
		require.NoError(t, uc.Update(ctx, id, input("Tornillo", "0.10", qty, 0)))
	}

	recent, err := uc.History(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, recent, inventory.RecentHistoryLimit)
	assert.Len(t, history(t, uc, id), 60, "por producto el historial es completo")
	assert.Greater(t, recent[0].ID, recent[1].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cache de lectura
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_CacheInvalidadaPorMutacion(t *testing.T) {
	uc, _, metrics := setup(t)
	ctx := context.Background()
	id, err := uc.Create(ctx, input("Lámpara", "15", 2, 1))
	require.NoError(t, err)

	first, err := uc.ListActive(ctx)
	require.NoError(t, err)
	first[0].Name = "mutado por el llamador"

	second, err := uc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lámpara", second[0].Name, "la cache entrega copias")
	assert.Equal(t, 1, metrics.hits)

	require.NoError(t, uc.Update(ctx, id, input("Lámpara LED", "15", 2, 1)))

	third, err := uc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lámpara LED", third[0].Name)
	assert.Equal(t, 1, metrics.hits)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_VerifyDetectaDescuadre(t *testing.T) {
	uc, store, metrics := setup(t)
	ctx := context.Background()
	ok, err := uc.Create(ctx, input("Bien", "1", 3, 0))
	require.NoError(t, err)
	bad, err := uc.Create(ctx, input("Mal", "1", 3, 0))
	require.NoError(t, err)

	// Escritura por fuera del libro: cambia la cantidad sin movimiento.
	p, err := store.Products().GetActive(ctx, bad)
	require.NoError(t, err)
	p.Quantity = 9
	require.NoError(t, store.Products().Update(ctx, p))

	_, err = uc.Verify(ctx, ok)
	require.NoError(t, err)

	rec, err := uc.Verify(ctx, bad)
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, 9, rec.StoredQuantity)
	assert.Equal(t, int64(3), rec.LedgerQuantity)

	mismatches, err := uc.VerifyAll(ctx)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, bad, mismatches[0].ProductID)
	assert.Equal(t, 2, metrics.violations)

	_, err = uc.Verify(ctx, 777)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// catalog: Laptop Top=LOW, Tablet TOP=NORMAL, Top Hat=LOW, Desktop=OUT_OF_STOCK, Screwdriver=NORMAL.
func catalog() []entity.Product {
	return []entity.Product{
		product("Laptop Top", "electronics", "900", 1, 3),
		product("Tablet TOP", "electronics", "300", 10, 3),
		product("Top Hat", "clothing", "20", 1, 3),
		product("Desktop", "electronics", "700", 0, 1),
		product("Screwdriver", "tools", "5", 50, 10),
	}
}

func names(ps []entity.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterProducts_SinPredicadosDevuelveEntrada(t *testing.T) {
	in := catalog()

	assert.Equal(t, in, inventory.FilterProducts(in, inventory.ProductFilter{}))
	assert.Equal(t, in, inventory.FilterProducts(in, inventory.ProductFilter{Name: " ", Category: "all", Status: "ALL"}))
}

func TestFilterProducts_ComposicionAND(t *testing.T) {
	got := inventory.FilterProducts(catalog(), inventory.ProductFilter{
		Name:     "top",
		Category: "electronics",
		Status:   "LOW",
	})

	assert.Equal(t, []string{"Laptop Top"}, names(got))
}

func TestFilterProducts_NombreSinMayusculas(t *testing.T) {
	got := inventory.FilterProducts(catalog(), inventory.ProductFilter{Name: "TOP"})

	// "Desktop" contiene "top" como subcadena.
	assert.Equal(t, []string{"Laptop Top", "Tablet TOP", "Top Hat", "Desktop"}, names(got))
}

func TestFilterProducts_CategoriaNormalizada(t *testing.T) {
	ps := []entity.Product{product("Cabo", "eletronicos", "1", 1, 0)}

	got := inventory.FilterProducts(ps, inventory.ProductFilter{Category: "Eletrônicos"})

	require.Len(t, got, 1)
}

func TestFilterProducts_EstadoDesconocidoNoCoincide(t *testing.T) {
	got := inventory.FilterProducts(catalog(), inventory.ProductFilter{Status: "CRITICAL"})

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilterProducts_EstadoAgotado(t *testing.T) {
	got := inventory.FilterProducts(catalog(), inventory.ProductFilter{Status: "out_of_stock"})

	assert.Equal(t, []string{"Desktop"}, names(got))
}

func TestFilterMovements(t *testing.T) {
	movs := []entity.StockMovement{
		{ID: 3, Kind: entity.MovementOutbound, Quantity: 4, ProductName: "Cable"},
		{ID: 2, Kind: entity.MovementInbound, Quantity: 5, ProductName: "Cable"},
		{ID: 1, Kind: entity.MovementInbound, Quantity: 7, ProductName: "Cable USB"},
	}

	t.Run("sin predicados", func(t *testing.T) {
		assert.Equal(t, movs, inventory.FilterMovements(movs, inventory.MovementFilter{Kind: "all"}))
	})

	t.Run("por producto", func(t *testing.T) {
		got := inventory.FilterMovements(movs, inventory.MovementFilter{ProductName: "cable"})
		require.Len(t, got, 2)
		assert.Equal(t, int64(3), got[0].ID)
		assert.Equal(t, int64(2), got[1].ID)
	})

	t.Run("producto y tipo", func(t *testing.T) {
		got := inventory.FilterMovements(movs, inventory.MovementFilter{ProductName: "Cable", Kind: "INBOUND"})
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0].Quantity)
		assert.Equal(t, 5, got[0].Delta())
	})

	t.Run("sin resultados", func(t *testing.T) {
		got := inventory.FilterMovements(movs, inventory.MovementFilter{Kind: "TRANSFER"})
		assert.Empty(t, got)
	})
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeReporter struct{}

func (fakeReporter) Generate(context.Context, *dto.DashboardSummaryDTO, []dto.ProductResponse) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

func newAPI(t *testing.T, secret string) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.New()
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), nil, nil)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    ledger,
		Dashboard: appanalytics.NewDashboardUseCase(ledger),
		Reporter:  fakeReporter{},
		JWTSecret: secret,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path string, body any, auth string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func cable() map[string]any {
	return map[string]any{
		"name": "Cable", "category": "electronics", "price": "12.50",
		"quantity": 10, "min_quantity": 5,
	}
}

func createCable(t *testing.T, app *fiber.App, auth string) int64 {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/products", cable(), auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.CreatedResponse](t, resp).ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CrearYObtener(t *testing.T) {
	app, _ := newAPI(t, "")
	id := createCable(t, app, "")

	resp := call(t, app, http.MethodGet, "/api/products/"+itoa(id), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "Cable", p.Name)
	assert.Equal(t, 10, p.Quantity)
	assert.Equal(t, "NORMAL", p.Status)
	assert.Equal(t, "125", p.Valuation.String())
}

func TestProducts_ValidacionDevuelve400ConCampo(t *testing.T) {
	app, _ := newAPI(t, "")
	body := cable()
	body["price"] = "0"

	resp := call(t, app, http.MethodPost, "/api/products", body, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "price", e.Field)
}

func TestProducts_CuerpoInvalido(t *testing.T) {
	app, _ := newAPI(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_IDInvalidoYNoEncontrado(t *testing.T) {
	app, _ := newAPI(t, "")

	resp := call(t, app, http.MethodGet, "/api/products/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products/999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_ActualizarGeneraAjuste(t *testing.T) {
	app, _ := newAPI(t, "")
	id := createCable(t, app, "")

	body := cable()
	body["quantity"] = 3
	resp := call(t, app, http.MethodPut, "/api/products/"+itoa(id), body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, "LOW", p.Status)

	resp = call(t, app, http.MethodGet, "/api/movements?product_id="+itoa(id), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ListResponse[dto.MovementResponse]](t, resp)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "OUTBOUND", list.Items[0].Kind)
	assert.Equal(t, 7, list.Items[0].Quantity)
	assert.Equal(t, "INBOUND", list.Items[1].Kind)
}

func TestProducts_BorradoLogico(t *testing.T) {
	app, _ := newAPI(t, "")
	id := createCable(t, app, "")

	resp := call(t, app, http.MethodDelete, "/api/products/"+itoa(id), nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/products/"+itoa(id), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, 0, decode[dto.ListResponse[dto.ProductResponse]](t, resp).Total)

	// El historial sobrevive al borrado.
	resp = call(t, app, http.MethodGet, "/api/movements?product_id="+itoa(id), nil, "")
	assert.Equal(t, 1, decode[dto.ListResponse[dto.MovementResponse]](t, resp).Total)
}

func TestProducts_Filtros(t *testing.T) {
	app, _ := newAPI(t, "")
	createCable(t, app, "")
	mouse := cable()
	mouse["name"] = "Mouse"
	mouse["quantity"] = 0
	resp := call(t, app, http.MethodPost, "/api/products", mouse, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products?status=OUT_OF_STOCK", nil, "")
	list := decode[dto.ListResponse[dto.ProductResponse]](t, resp)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Mouse", list.Items[0].Name)

	resp = call(t, app, http.MethodGet, "/api/products?name=CAB&status=all", nil, "")
	assert.Equal(t, 1, decode[dto.ListResponse[dto.ProductResponse]](t, resp).Total)

	resp = call(t, app, http.MethodGet, "/api/products?status=BROKEN", nil, "")
	assert.Equal(t, 0, decode[dto.ListResponse[dto.ProductResponse]](t, resp).Total)
}

func TestProducts_Verify(t *testing.T) {
	app, _ := newAPI(t, "")
	id := createCable(t, app, "")

	resp := call(t, app, http.MethodGet, "/api/products/"+itoa(id)+"/verify", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[dto.ReconciliationResponse](t, resp)
	assert.True(t, rec.Consistent)
	assert.Equal(t, int64(10), rec.LedgerQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos, dashboard y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_FiltroPorTipoYNombre(t *testing.T) {
	app, _ := newAPI(t, "")
	createCable(t, app, "")

	resp := call(t, app, http.MethodGet, "/api/movements?kind=outbound", nil, "")
	assert.Equal(t, 0, decode[dto.ListResponse[dto.MovementResponse]](t, resp).Total)

	resp = call(t, app, http.MethodGet, "/api/movements?product_name=cable&kind=INBOUND", nil, "")
	assert.Equal(t, 1, decode[dto.ListResponse[dto.MovementResponse]](t, resp).Total)

	resp = call(t, app, http.MethodGet, "/api/movements?product_id=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboard_ResumenYAlertas(t *testing.T) {
	app, _ := newAPI(t, "")
	createCable(t, app, "")

	resp := call(t, app, http.MethodGet, "/api/dashboard/summary", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decode[dto.DashboardSummaryDTO](t, resp)
	assert.Equal(t, 1, s.TotalProducts)
	assert.Equal(t, "125", s.TotalValuation.String())

	resp = call(t, app, http.MethodGet, "/api/alerts/low-stock", nil, "")
	assert.Equal(t, 0, decode[dto.ListResponse[dto.ProductResponse]](t, resp).Total)
}

func TestReport_DevuelvePDF(t *testing.T) {
	app, _ := newAPI(t, "")
	resp := call(t, app, http.MethodGet, "/api/reports/stock.pdf", nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// Package pdf genera el reporte de existencias en PDF (A4).
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                       │
//	│  KPIs: Productos | Stock bajo | Agotados | Valorización     │
//	│  TABLA: Producto | Categoría | Cant. | Mín. | Precio | ...  │
//	│  ALERTAS: productos con cantidad <= mínimo                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var statusLabels = map[string]string{
	"OUT_OF_STOCK": "Agotado",
	"LOW":          "Stock bajo",
	"NORMAL":       "Normal",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// StockReportGenerator genera el reporte de existencias con Maroto v2.
type StockReportGenerator struct {
	title string
}

// NewStockReportGenerator construye el generador. title vacío = "Reporte de inventario".
func NewStockReportGenerator(title string) *StockReportGenerator {
	if strings.TrimSpace(title) == "" {
		title = "Reporte de inventario"
	}
	return &StockReportGenerator{title: title}
}

// Generate genera el PDF y devuelve sus bytes. products debe ser el inventario activo del resumen.
func (g *StockReportGenerator) Generate(
	ctx context.Context,
	summary *dto.DashboardSummaryDTO,
	products []dto.ProductResponse,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("pdf: resumen nil")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(productRows(products)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(alertRows(summary.LowStockAlerts)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *StockReportGenerator) headerRow(summary *dto.DashboardSummaryDTO) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+summary.GeneratedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

// kpiRow: cuatro indicadores principales.
func kpiRow(summary *dto.DashboardSummaryDTO) core.Row {
	kpi := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 6}),
		)
	}
	return row.New(16).Add(
		kpi("PRODUCTOS", fmt.Sprint(summary.TotalProducts)),
		kpi("STOCK BAJO", fmt.Sprint(summary.LowStock)),
		kpi("AGOTADOS", fmt.Sprint(summary.OutOfStock)),
		kpi("VALORIZACIÓN", "$"+formatMoney(summary.TotalValuation)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 3, align.Left),
		h("Categoría", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Mín.", 1, align.Center),
		h("Precio", 2, align.Right),
		h("Valorización", 2, align.Right),
		h("Estado", 1, align.Center),
	)
}

// productRows: una fila por producto.
func productRows(products []dto.ProductResponse) []core.Row {
	if len(products) == 0 {
		return []core.Row{row.New(8).Add(col.New(12).Add(
			text.New("Sin productos activos.", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
		))}
	}
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		style := props.Text{Size: 8, Align: align.Center, Top: 1}
		if p.Status != "NORMAL" {
			style.Color = colorAlert
			style.Style = fontstyle.Bold
		}
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(p.CategoryLabel, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(fmt.Sprint(p.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprint(p.MinQuantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(p.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(p.Valuation), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(statusLabel(p.Status), style)),
		))
	}
	return result
}

// alertRows: sección de alertas; vacía si no hay productos bajo el mínimo.
func alertRows(alerts []dto.ProductResponse) []core.Row {
	if len(alerts) == 0 {
		return nil
	}
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(fmt.Sprintf("ALERTAS DE STOCK (%d)", len(alerts)), props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorAlert, Top: 1,
			}),
		)),
	}
	for _, a := range alerts {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s: %d unidades (mínimo %d) - %s",
				a.Name, a.Quantity, a.MinQuantity, statusLabel(a.Status),
			), props.Text{Size: 8, Left: 2, Top: 0.5}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// formatMoney formatea con puntos de miles y coma decimal (2 decimales).
// Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}

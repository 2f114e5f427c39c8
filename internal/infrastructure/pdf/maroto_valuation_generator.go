// Package pdf genera el reporte de valorización FIFO de una bodega de combustible.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Planta + Bodega        │  Producto + Fecha de corte │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Entrada | Fecha | Litros | Costo unit. | Valor       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Litros / Valor / Costo promedio                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/costing"
)

var _ inventory.ValuationPDFGenerator = (*MarotoValuationGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoValuationGenerator implementa inventory.ValuationPDFGenerator usando Maroto v2.
type MarotoValuationGenerator struct{}

// NewMarotoValuationGenerator construye el generador.
func NewMarotoValuationGenerator() *MarotoValuationGenerator { return &MarotoValuationGenerator{} }

// GenerateValuationPDF genera el PDF y devuelve sus bytes.
func (g *MarotoValuationGenerator) GenerateValuationPDF(_ context.Context, report *inventory.ValuationReport) ([]byte, error) {
	if report == nil || report.Warehouse == nil || report.Product == nil {
		return nil, fmt.Errorf("pdf: reporte incompleto")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización de inventario de combustible", true).
		WithAuthor(report.Warehouse.PlantName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(report.Lots) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin lotes con costo en la ventana.", props.Text{
				Size: 8, Align: align.Center, Top: 2, Color: colorGray,
			}),
		)))
	}
	for _, r := range lotRows(report.Lots) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report.Summary))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r *inventory.ValuationReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(r.Warehouse.PlantName, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Bodega: "+r.Warehouse.Name, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("VALORIZACIÓN FIFO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(r.Product.Name+" ("+r.Product.Code+")", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Corte: "+r.Summary.AsOf.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
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
		h("Entrada", 4, align.Left),
		h("Fecha", 2, align.Center),
		h("Litros", 2, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// lotRows una fila por lote, del más antiguo al más reciente.
func lotRows(lots []costing.Lot) []core.Row {
	result := make([]core.Row, 0, len(lots))
	for _, l := range lots {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(shortID(l.EntryID), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.EntryDate.Format("02/01/2006"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatNumber(l.Quantity, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatNumber(l.UnitCost, 4), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatNumber(l.Value(), 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(s inventory.ValuationSummary) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	avg := "—"
	if s.WeightedUnitCost != nil {
		avg = "$" + formatNumber(*s.WeightedUnitCost, 4)
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Litros:"),
			label("Valor total:"),
			label("Costo promedio:"),
		),
		col.New(3).Add(
			value(formatNumber(s.TotalLiters, 2)),
			value("$"+formatNumber(s.TotalValue, 2)),
			value(avg),
		),
	)
}

// footerRow QR con bodega, producto, corte y valor para cotejar el reporte impreso.
func footerRow(r *inventory.ValuationReport) core.Row {
	payload := strings.Join([]string{
		r.Warehouse.ID,
		r.Product.ID,
		r.Summary.AsOf.UTC().Format("2006-01-02T15:04:05Z"),
		r.Summary.TotalLiters.String(),
		r.Summary.TotalValue.StringFixed(2),
	}, "|")
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(payload, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Lotes reconstruidos por FIFO a partir del libro de movimientos.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Las entradas sin costo no forman lotes y no se valorizan.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatNumber redondea a places decimales con punto de miles y coma decimal.
// Ej: 1234567.891 (2) → "1.234.567,89"
func formatNumber(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	out := sign + groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	return out
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

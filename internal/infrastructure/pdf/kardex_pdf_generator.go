// Package pdf implementa la exportación del kardex (historial de movimientos de
// un producto) como reporte PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del producto  │  Saldo actual + Costo prom. │
//	│  ───────────────────────────────────────────────────────── │
//	│  TABLA: Fecha | Tipo | Cant | Precio | Total | Saldo | Costo│
//	│  ───────────────────────────────────────────────────────── │
//	│  PIE: total de movimientos + fecha de generación            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

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

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/pkg/format"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexPDFGenerator genera el reporte de historial usando Maroto v2.
type KardexPDFGenerator struct{}

// NewKardexPDFGenerator construye el generador.
func NewKardexPDFGenerator() *KardexPDFGenerator { return &KardexPDFGenerator{} }

// GenerateKardexPDF genera el PDF del historial y devuelve sus bytes.
// movements debe venir ya ordenado (el caller usa el mismo orden del feed).
func (g *KardexPDFGenerator) GenerateKardexPDF(
	_ context.Context,
	product *entity.Product,
	movements []*entity.Movement,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex - "+product.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableMovementRows(movements) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(movements)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto (izq) y saldo actual + costo promedio (der).
func headerRow(product *entity.Product) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("KARDEX DE PRODUCTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
			text.New("Unidad: "+product.Unit, props.Text{
				Size: 8, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Saldo actual: "+product.Quantity.String()+" "+product.Unit, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 3,
			}),
			text.New("Costo promedio: "+format.Currency(product.AveragePurchasePrice, "COP", format.DefaultTag), props.Text{
				Size: 9, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Center),
		h("Cant.", 1, align.Right),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
		h("Saldo", 2, align.Right),
		h("Costo Prom.", 2, align.Right),
	)
}

// tableMovementRows: una fila por movimiento, con saldo y costo posteriores.
func tableMovementRows(movements []*entity.Movement) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		tipo := "Entrada"
		if mv.Type == entity.MovementTypeOut {
			tipo = "Salida"
		}
		cell := func(value string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(value, props.Text{
				Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
			}))
		}
		result = append(result, row.New(7).Add(
			cell(format.Date(mv.Date, format.DefaultTag), 2, align.Left),
			cell(tipo, 1, align.Center),
			cell(mv.Quantity.String(), 1, align.Right),
			cell(format.Currency(mv.Price, "COP", format.DefaultTag), 2, align.Right),
			cell(format.Currency(mv.TotalPrice, "COP", format.DefaultTag), 2, align.Right),
			cell(mv.NewQuantity.String(), 2, align.Right),
			cell(format.Currency(mv.NewAveragePrice, "COP", format.DefaultTag), 2, align.Right),
		))
	}
	return result
}

// footerRow: total de movimientos y fecha de generación.
func footerRow(total int) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("%d movimientos · generado el %s", total,
				format.Date(time.Now(), format.DefaultTag)), props.Text{
				Size: 7, Color: colorGray, Top: 2,
			}),
		),
	)
}

// Package pdf implementa la exportación del kardex a documento descargable
// usando Maroto v2: una foto de balances o el historial de movimientos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte  │  Bodega + Fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Clase/Tipo | Cant | UOM | Bodega | Ref     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: artículos listados / movimientos listados          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"sort"
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
	marotoentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator genera los documentos del kardex con Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateBalancesPDF genera la foto de balances actual y devuelve sus bytes.
// Los artículos se listan ordenados por código para un documento determinista.
func (g *MarotoReportGenerator) GenerateBalancesPDF(state entity.StockState) ([]byte, error) {
	m := maroto.New(reportConfig("Kardex — Foto de Balances"))

	m.AddRows(headerRow("FOTO DE BALANCES", state.DefaultWarehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(balancesHeaderRow())

	codes := make([]string, 0, len(state.Balances))
	for code := range state.Balances {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	kinds := map[string]string{}
	for _, it := range state.Items {
		kinds[it.Code] = it.Kind
	}
	for _, code := range codes {
		m.AddRows(balanceRow(state.Balances[code], kinds[code]))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(summaryRow(fmt.Sprintf("%d artículos con balance", len(codes))))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateLedgerPDF genera el historial de movimientos (del más reciente al
// más antiguo, la convención de presentación del ledger) y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateLedgerPDF(state entity.StockState) ([]byte, error) {
	m := maroto.New(reportConfig("Kardex — Historial de Movimientos"))

	m.AddRows(headerRow("HISTORIAL DE MOVIMIENTOS", state.DefaultWarehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(ledgerHeaderRow())

	for _, en := range state.Ledger {
		m.AddRows(ledgerRow(en))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(summaryRow(fmt.Sprintf("%d movimientos", len(state.Ledger))))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func reportConfig(title string) *marotoentity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()
}

// headerRow: título del reporte (izq) y bodega + fecha de emisión (der).
func headerRow(title, warehouse string) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("KARDEX", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Bodega: "+nonEmpty(warehouse, "—"), props.Text{
				Size: 9, Align: align.Right, Top: 2,
			}),
			text.New("Emitido: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func balancesHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Código", 3, align.Left),
		headerCell("Clase", 2, align.Center),
		headerCell("Cantidad", 2, align.Right),
		headerCell("UOM", 1, align.Center),
		headerCell("Bodega", 2, align.Left),
		headerCell("Últ. costo", 2, align.Right),
	)
}

func balanceRow(b *entity.Balance, kind string) core.Row {
	lastRate := "—"
	if b.LastRate != nil {
		lastRate = b.LastRate.StringFixed(2)
	}
	return row.New(6).Add(
		bodyCell(b.ItemCode, 3, align.Left),
		bodyCell(nonEmpty(kind, "—"), 2, align.Center),
		bodyCell(b.Qty.String(), 2, align.Right),
		bodyCell(nonEmpty(b.UOM, "—"), 1, align.Center),
		bodyCell(nonEmpty(b.Warehouse, "—"), 2, align.Left),
		bodyCell(lastRate, 2, align.Right),
	)
}

func ledgerHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Fecha", 2, align.Left),
		headerCell("Tipo", 2, align.Center),
		headerCell("Código", 2, align.Left),
		headerCell("Cantidad", 2, align.Right),
		headerCell("UOM", 1, align.Center),
		headerCell("Referencia", 3, align.Left),
	)
}

func ledgerRow(en entity.Entry) core.Row {
	date := "—"
	if !en.Date.IsZero() {
		date = en.Date.Format("02/01/2006")
	}
	return row.New(6).Add(
		bodyCell(date, 2, align.Left),
		bodyCell(en.Type, 2, align.Center),
		bodyCell(en.ItemCode, 2, align.Left),
		bodyCell(en.SignedQty().String(), 2, align.Right),
		bodyCell(nonEmpty(en.UOM, "—"), 1, align.Center),
		bodyCell(nonEmpty(en.Reference, "—"), 3, align.Left),
	)
}

func summaryRow(summary string) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(summary, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right,
			Color: colorGray, Top: 2,
		})),
	)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorPrimary, Top: 2, Left: 1, Right: 1,
	}))
}

func bodyCell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{
		Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Package export genera los archivos de liquidación de un grupo de pagos.
//
// Layout del resumen PDF (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Grupo + estado        │  Fechas de confirmación/posteo │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Aseguradora | Pólizas | Total                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  REFERENCIAS: Transferencia | Monto usado                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL DEL GRUPO                                             │
//	└─────────────────────────────────────────────────────────────┘
package export

import (
	"context"
	"fmt"
	"strings"
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
	"github.com/shopspring/decimal"

	appexport "github.com/jhoicas/Comisiones-api/internal/application/export"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoGroupSummary implementa export.SummaryRenderer usando Maroto v2.
type MarotoGroupSummary struct{}

// NewMarotoGroupSummary construye el generador.
func NewMarotoGroupSummary() *MarotoGroupSummary { return &MarotoGroupSummary{} }

// RenderGroupSummary genera el PDF y devuelve sus bytes.
func (g *MarotoGroupSummary) RenderGroupSummary(_ context.Context, s appexport.GroupSummary) ([]byte, error) {
	if s.Group == nil {
		return nil, fmt.Errorf("pdf: grupo vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de grupo de pagos", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s.Group))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("TOTALES POR ASEGURADORA"))
	m.AddRows(tableHeaderRow("Aseguradora", "Pólizas", "Total"))
	for _, r := range carrierRows(s.Sheets) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("REFERENCIAS BANCARIAS"))
	m.AddRows(tableHeaderRow("Transferencia", "", "Monto usado"))
	for _, r := range referenceRows(s.References) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(s.Group.TotalAmount))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(g *entity.PaymentGroup) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("GRUPO DE PAGOS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(g.ID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Estado: "+g.Status, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Confirmado: "+formatDate(g.ConfirmedAt), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
			text.New("Posteado: "+formatDate(g.PostedAt), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func tableHeaderRow(first, second, third string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h(first, 7, align.Left),
		h(second, 2, align.Center),
		h(third, 3, align.Right),
	)
}

func carrierRows(sheets []appexport.CarrierSheet) []core.Row {
	result := make([]core.Row, 0, len(sheets))
	for _, s := range sheets {
		result = append(result, row.New(6).Add(
			col.New(7).Add(text.New(s.CarrierName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(fmt.Sprint(len(s.Lines)), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New("$"+formatMoney(s.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func referenceRows(refs []entity.PaymentGroupReference) []core.Row {
	if len(refs) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin transferencias asignadas", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(refs))
	for _, r := range refs {
		result = append(result, row.New(6).Add(
			col.New(9).Add(text.New(r.BankTransferID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New("$"+formatMoney(r.AmountUsed), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL DEL GRUPO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

// formatMoney separa miles con coma y deja dos decimales.
// Ej: 1234567.5 → "1,234,567.50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "." + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

package parsers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

var (
	mercantilPolicy = regexp.MustCompile(`^(\d{2,6})\s+Factura`)
	// hasta tres montos pegados antes del nombre; el primero es la comisión.
	mercantilLine = regexp.MustCompile(`Factura\s+\d+.*?(\d+\.\d{2})\s*(\d+\.\d{2})?\s*(\d+\.\d{2})?\s*([A-ZÑÁÉÍÓÚÜ][A-ZÑÁÉÍÓÚÜ\s]{4,}?)(?:Recibos|USD|Bs)`)

	mercantilXLSXPolicy = regexp.MustCompile(`^(\d{1,4}-\d{1,5}-\d{1,8})`)
	mercantilXLSXName   = regexp.MustCompile(`^[A-Z\s]{10,}$`)
	mercantilXLSXAmount = regexp.MustCompile(`^\d+\.?\d*$`)
)

var mercantilSkip = []string{
	"No. de Póliza", "RESUMEN", "COMISIONES POR RAMO", "CONSOLIDADO", "Total de comisiones",
	"DESCUENTOS", "Total por Ramo", "Monto a pagar", "Comisión a liquidar",
}

// mercantilMinAmount montos menores en el Excel son porcentajes o redondeos, no comisiones.
var mercantilMinAmount = decimal.RequireFromString("0.01")

// MercantilPDF estrategia por expresión regular sobre las líneas "Factura" del PDF de MERCANTIL.
type MercantilPDF struct {
	text LineSource
}

// NewMercantilPDF construye la estrategia con el extractor de texto PDF.
func NewMercantilPDF(text LineSource) *MercantilPDF { return &MercantilPDF{text: text} }

func (p *MercantilPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.text.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return parseMercantilLines(lines), nil
}

func parseMercantilLines(lines []string) []commission.Row {
	var rows []commission.Row
	for _, line := range lines {
		if containsAny(line, mercantilSkip...) || !strings.Contains(line, "Factura") {
			continue
		}
		pm := mercantilPolicy.FindStringSubmatch(line)
		if pm == nil {
			continue
		}
		m := mercantilLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, ok := commission.ParseAmount(m[1])
		name := commission.CleanText(m[4])
		if !ok || !amount.IsPositive() || len([]rune(name)) <= 3 || containsAny(name, "TOTAL", "DESCUENTO") {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: pm[1],
			InsuredName:  name,
			Amount:       amount,
			Raw:          map[string]string{"line": line},
		})
	}
	return rows
}

// MercantilXLSX estrategia para el estado de MERCANTIL exportado a Excel: la póliza va en
// la columna A y nombre y comisión en columnas variables de la misma fila.
type MercantilXLSX struct{}

// NewMercantilXLSX construye la estrategia.
func NewMercantilXLSX() *MercantilXLSX { return &MercantilXLSX{} }

func (p *MercantilXLSX) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	table, err := ReadTable(in.File)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	header := -1
	for i := 0; i < min(20, len(table)); i++ {
		if strings.Contains(table.Cell(i, 0), "No. de Póliza") {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: fmt.Errorf("no se encontró el encabezado \"No. de Póliza\"")}
	}

	var rows []commission.Row
	for i := header + 1; i < len(table); i++ {
		colA := table.Cell(i, 0)
		if colA == "" || containsAny(colA, "RESUMEN", "Total", "COMISIONES", "CONSOLIDADO") {
			break
		}
		m := mercantilXLSXPolicy.FindStringSubmatch(colA)
		if m == nil {
			continue
		}
		var (
			name   string
			amount decimal.Decimal
		)
		for col := 1; col < 20; col++ {
			v := table.Cell(i, col)
			if v == "" {
				continue
			}
			if name == "" && mercantilXLSXName.MatchString(v) {
				name = v
			}
			if mercantilXLSXAmount.MatchString(v) {
				if d, ok := commission.ParseAmount(v); ok && d.GreaterThan(mercantilMinAmount) {
					amount = d
				}
			}
		}
		if name == "" || !amount.IsPositive() {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: m[1],
			InsuredName:  commission.CleanText(name),
			Amount:       amount,
			Raw:          map[string]string{"A": colA},
		})
	}
	return rows, nil
}

package parsers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

// Columnas fijas del estado BANESCO en Excel: A póliza (mezclada con otros datos), I nombre, R comisión.
const (
	banescoColPolicy = 0
	banescoColName   = 8
	banescoColAmount = 17
)

var (
	banescoPolicyPrefix = regexp.MustCompile(`^([\d-]+)`)
	// póliza, porcentaje, nombre (a veces pegado al porcentaje) y comisión.
	banescoPDFLine = regexp.MustCompile(`(\d{1,4}-\d{1,5}-\d{1,8}(?:-\d{1,2})?)\s+(\d+\.\d{2})\s*([A-Z][A-Z\s]{8,}?)\s+(\d+\.\d{2})`)
)

// BanescoXLSX estrategia de columnas fijas para el Excel de BANESCO.
type BanescoXLSX struct{}

// NewBanescoXLSX construye la estrategia.
func NewBanescoXLSX() *BanescoXLSX { return &BanescoXLSX{} }

func (p *BanescoXLSX) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	table, err := ReadTable(in.File)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	header := -1
	for i, row := range table {
		for _, v := range row {
			u := strings.ToUpper(v)
			if strings.Contains(u, "NOMBRE ASEGURADO") || strings.Contains(u, "TIPO DE MOVIMIENTO") {
				header = i
				break
			}
		}
		if header >= 0 {
			break
		}
	}
	if header < 0 {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: fmt.Errorf("no se encontró la fila de encabezado")}
	}

	var rows []commission.Row
	for i := header + 1; i < len(table); i++ {
		colA := table.Cell(i, banescoColPolicy)
		name := table.Cell(i, banescoColName)
		rawAmount := table.Cell(i, banescoColAmount)
		if name == "" || rawAmount == "" {
			continue
		}
		if containsAny(strings.ToUpper(colA), "TOTAL", "RESUMEN", "BALANCE", "DESCUENTO") ||
			containsAny(strings.ToUpper(name), "TOTAL", "RESUMEN") {
			continue
		}
		m := banescoPolicyPrefix.FindStringSubmatch(colA)
		if m == nil {
			continue
		}
		amount, ok := commission.ParseAmount(rawAmount)
		if !ok || amount.IsZero() || len([]rune(name)) < 3 {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: m[1],
			InsuredName:  commission.CleanText(name),
			Amount:       amount,
			Raw:          map[string]string{"A": colA, "I": name, "R": rawAmount},
		})
	}
	return rows, nil
}

// BanescoPDF estrategia por expresión regular sobre el texto del PDF de BANESCO.
type BanescoPDF struct {
	text LineSource
}

// NewBanescoPDF construye la estrategia con el extractor de texto PDF.
func NewBanescoPDF(text LineSource) *BanescoPDF { return &BanescoPDF{text: text} }

func (p *BanescoPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.text.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return parseBanescoLines(lines), nil
}

func parseBanescoLines(lines []string) []commission.Row {
	var rows []commission.Row
	for _, line := range lines {
		if containsAny(line, "Póliza", "RESUMEN", "BALANCE", "Total por Ramo", "DESCUENTOS",
			"Monto a pagar", "Nombre Asegurado", "Prima Cobrada") {
			continue
		}
		m := banescoPDFLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := commission.CleanText(m[3])
		amount, ok := commission.ParseAmount(m[4])
		if !ok || !amount.IsPositive() || len([]rune(name)) < 5 {
			continue
		}
		if containsAny(name, "TOTAL", "RESUMEN") {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: m[1],
			InsuredName:  name,
			Amount:       amount,
			Raw:          map[string]string{"line": line},
		})
	}
	return rows
}

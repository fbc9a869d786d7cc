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

// Códigos de agencia que no se distribuyen a corredores.
var assaExcludedCodes = map[string]bool{"PJ750": true, "PJ750-1": true, "PJ750-6": true, "PJ750-9": true}

var assaCode = regexp.MustCompile(`^PJ750-([1-9]\d*|0)$`)

// AssaCodesXLSX estrategia para el estado de ASSA por código de licencia (PJ750-xxx). Cada
// fila es un código con su comisión pagada; el código ocupa el lugar de la póliza.
type AssaCodesXLSX struct{}

// NewAssaCodesXLSX construye la estrategia.
func NewAssaCodesXLSX() *AssaCodesXLSX { return &AssaCodesXLSX{} }

func (p *AssaCodesXLSX) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	table, err := ReadTable(in.File)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	header, codeCol, amountCol := assaCodesHeader(table)
	if header < 0 {
		return nil, &domain.ParseError{Carrier: in.CarrierKey,
			Cause: fmt.Errorf("faltan las columnas LICENCIA/CÓDIGO y COMISIÓN")}
	}

	var rows []commission.Row
	for i := header + 1; i < len(table); i++ {
		code := strings.ToUpper(table.Cell(i, codeCol))
		raw := table.Cell(i, amountCol)
		if code == "" && raw == "" {
			continue
		}
		if !IsAssaCode(code) {
			continue
		}
		amount, ok := commission.ParseAmount(raw)
		if !ok || amount.IsZero() {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: code,
			Amount:       amount.Abs(),
			Raw:          map[string]string{"licencia": code, "comision": raw},
		})
	}
	return rows, nil
}

// IsAssaCode acepta PJ750-n con n sin ceros a la izquierda, salvo los códigos de agencia.
func IsAssaCode(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	return !assaExcludedCodes[code] && assaCode.MatchString(code)
}

// assaCodesHeader busca en las primeras 20 filas la columna de código y la de comisión. Una
// columna "COMISIÓN PAGADA/A PAGAR/TOTAL" tiene prioridad sobre una "COMISIÓN" o "MONTO" suelta.
func assaCodesHeader(table Table) (header, codeCol, amountCol int) {
	for i := 0; i < min(20, len(table)); i++ {
		codeCol, amountCol = -1, -1
		preferred := false
		for j := range table[i] {
			cell := foldUpper(table.Cell(i, j))
			if cell == "" {
				continue
			}
			if strings.Contains(cell, "LIC") || strings.Contains(cell, "COD") {
				codeCol = j
			}
			isCommission := strings.Contains(cell, "COMISION")
			switch {
			case isCommission && containsAny(cell, "PAGADA", "PAGAR", "TOTAL"):
				amountCol, preferred = j, true
			case !preferred && amountCol < 0 && (isCommission || containsAny(cell, "HONORARIO", "MONTO")):
				amountCol = j
			}
		}
		if codeCol >= 0 && amountCol >= 0 {
			return i, codeCol, amountCol
		}
	}
	return -1, -1, -1
}

package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	appexport "github.com/jhoicas/Comisiones-api/internal/application/export"
)

const settlementSheet = "Pagos"

var settlementHeaders = []any{"Asegurado", "Póliza", "Monto Aplicado", "Fecha de Liquidación"}

// ExcelizeSettlement implementa export.SpreadsheetWriter con excelize.
type ExcelizeSettlement struct{}

// NewExcelizeSettlement construye el generador de planillas.
func NewExcelizeSettlement() *ExcelizeSettlement { return &ExcelizeSettlement{} }

// WriteSettlement escribe una fila por línea y una fila final de total.
func (w *ExcelizeSettlement) WriteSettlement(_ context.Context, sheet appexport.CarrierSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", settlementSheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo monto: %w", err)
	}

	if err := f.SetSheetRow(settlementSheet, "A1", &settlementHeaders); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}
	date := sheet.SettlementDate.Format(time.DateOnly)
	r := 2
	for _, l := range sheet.Lines {
		cell, _ := excelize.CoordinatesToCellName(1, r)
		values := []any{l.ClientName, l.PolicyNumber, l.AmountApplied.InexactFloat64(), date}
		if err := f.SetSheetRow(settlementSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", r, err)
		}
		r++
	}
	totalRow := []any{"TOTAL", "", sheet.Total.InexactFloat64(), ""}
	cell, _ := excelize.CoordinatesToCellName(1, r)
	if err := f.SetSheetRow(settlementSheet, cell, &totalRow); err != nil {
		return nil, fmt.Errorf("xlsx: total: %w", err)
	}

	last, _ := excelize.CoordinatesToCellName(4, r)
	_ = f.SetCellStyle(settlementSheet, "A1", "D1", bold)
	_ = f.SetCellStyle(settlementSheet, fmt.Sprintf("A%d", r), last, bold)
	_ = f.SetCellStyle(settlementSheet, "C2", fmt.Sprintf("C%d", r), money)
	_ = f.SetColWidth(settlementSheet, "A", "A", 40)
	_ = f.SetColWidth(settlementSheet, "B", "B", 22)
	_ = f.SetColWidth(settlementSheet, "C", "D", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

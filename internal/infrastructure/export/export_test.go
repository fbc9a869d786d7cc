package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appexport "github.com/jhoicas/Comisiones-api/internal/application/export"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/export"
)

func sampleSheet(t *testing.T) appexport.CarrierSheet {
	t.Helper()
	return appexport.CarrierSheet{
		CarrierID:      "c1",
		CarrierName:    "ASSA",
		SettlementDate: time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		Lines: []entity.SettlementLine{
			{CarrierID: "c1", CarrierName: "ASSA", ClientName: "Ana Diaz", PolicyNumber: "P-1", AmountApplied: decimal.RequireFromString("100.25")},
			{CarrierID: "c1", CarrierName: "ASSA", ClientName: "Luis Mora", PolicyNumber: "P-2", AmountApplied: decimal.RequireFromString("50")},
		},
		Total: decimal.RequireFromString("150.25"),
	}
}

// ─── Planilla xlsx ────────────────────────────────────────────────────────────

func TestWriteSettlement_ColumnasYTotal(t *testing.T) {
	content, err := export.NewExcelizeSettlement().WriteSettlement(context.Background(), sampleSheet(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Pagos")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Asegurado", "Póliza", "Monto Aplicado", "Fecha de Liquidación"}, rows[0])
	assert.Equal(t, "Ana Diaz", rows[1][0])
	assert.Equal(t, "P-1", rows[1][1])
	assert.Equal(t, "2025-03-10", rows[1][3])
	assert.Equal(t, "TOTAL", rows[3][0])

	raw, err := f.GetCellValue("Pagos", "C4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "150.25", raw)
}

func TestWriteSettlement_SinLineas(t *testing.T) {
	sheet := sampleSheet(t)
	sheet.Lines, sheet.Total = nil, decimal.Zero

	content, err := export.NewExcelizeSettlement().WriteSettlement(context.Background(), sheet)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Pagos")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

// ─── Zip ──────────────────────────────────────────────────────────────────────

func TestArchive_EntradasConSuNombre(t *testing.T) {
	content, err := export.NewZipArchiver().Archive([]appexport.File{
		{Name: "2025-03-10_ASSA.xlsx", Content: []byte("uno")},
		{Name: "2025-03-10_SURA.xlsx", Content: []byte("dos")},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "2025-03-10_ASSA.xlsx", zr.File[0].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "dos", string(body))
}

func TestArchive_NombreDuplicado(t *testing.T) {
	_, err := export.NewZipArchiver().Archive([]appexport.File{
		{Name: "a.xlsx"}, {Name: "a.xlsx"},
	})
	assert.Error(t, err)
}

// ─── Resumen PDF ──────────────────────────────────────────────────────────────

func TestRenderGroupSummary_GeneraPDF(t *testing.T) {
	posted := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	summary := appexport.GroupSummary{
		Group: &entity.PaymentGroup{
			ID: "0c8f5a9e-1111-2222-3333-444455556666", Status: entity.GroupStatusPosted,
			TotalAmount: decimal.RequireFromString("150.25"), PostedAt: &posted, ConfirmedAt: &posted,
		},
		Sheets: []appexport.CarrierSheet{sampleSheet(t)},
		References: []entity.PaymentGroupReference{
			{BankTransferID: "t1", AmountUsed: decimal.RequireFromString("150.25")},
		},
	}

	content, err := export.NewMarotoGroupSummary().RenderGroupSummary(context.Background(), summary)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestRenderGroupSummary_SinGrupo(t *testing.T) {
	_, err := export.NewMarotoGroupSummary().RenderGroupSummary(context.Background(), appexport.GroupSummary{})
	assert.Error(t, err)
}

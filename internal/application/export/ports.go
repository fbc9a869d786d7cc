package export

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// CarrierSheet líneas de liquidación de una aseguradora dentro de un grupo posteado.
type CarrierSheet struct {
	CarrierID      string
	CarrierName    string
	SettlementDate time.Time
	Lines          []entity.SettlementLine
	Total          decimal.Decimal
}

// GroupSummary datos del resumen PDF de un grupo.
type GroupSummary struct {
	Group      *entity.PaymentGroup
	Sheets     []CarrierSheet
	References []entity.PaymentGroupReference
}

// File archivo generado.
type File struct {
	Name    string
	Content []byte
}

// SpreadsheetWriter genera la planilla de instrucciones de pago de una aseguradora.
type SpreadsheetWriter interface {
	WriteSettlement(ctx context.Context, sheet CarrierSheet) ([]byte, error)
}

// SummaryRenderer genera el PDF resumen de un grupo.
type SummaryRenderer interface {
	RenderGroupSummary(ctx context.Context, summary GroupSummary) ([]byte, error)
}

// Archiver empaqueta varios archivos en uno solo.
type Archiver interface {
	Archive(files []File) ([]byte, error)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un grupo de pago.
const (
	GroupStatusDraft     = "DRAFT"
	GroupStatusConfirmed = "CONFIRMED"
	GroupStatusPosted    = "POSTED"
	GroupStatusDiscarded = "DISCARDED"
)

// PaymentGroup unidad atómica de liquidación.
type PaymentGroup struct {
	ID          string
	Status      string
	TotalAmount decimal.Decimal // suma de AmountApplied de sus ítems
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	PostedAt    *time.Time
	UpdatedAt   time.Time
}

// PaymentGroupItem pago incluido en un grupo.
type PaymentGroupItem struct {
	GroupID          string
	PendingPaymentID string
	CarrierID        string
	AmountApplied    decimal.Decimal
}

// PaymentGroupReference monto tomado de una transferencia para un grupo.
type PaymentGroupReference struct {
	GroupID        string
	BankTransferID string
	AmountUsed     decimal.Decimal
}

// SettlementLine fila de exportación de un grupo posteado.
type SettlementLine struct {
	CarrierID     string
	CarrierName   string
	ClientName    string
	PolicyNumber  string
	AmountApplied decimal.Decimal
}

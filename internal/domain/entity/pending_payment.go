package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago pendiente.
const (
	PaymentStatusPendingConfirmation = "PENDIENTE_CONFIRMACION" // cuota recurrente generada por el cron
	PaymentStatusPending             = "PENDIENTE"
	PaymentStatusGrouped             = "AGRUPADO"
	PaymentStatusPaid                = "PAGADO"
)

// Tipos de obligación.
const (
	PaymentTypeCarrierPayout  = "PAGO_ASEGURADORA"
	PaymentTypeRefundToClient = "REFUND_TO_CLIENT"
)

// Orígenes de un pago pendiente.
const (
	PaymentSourceManual     = "MANUAL"
	PaymentSourceRecurrence = "CRON_RECURRENCE"
)

// RefundInfo datos bancarios de una devolución. Se anotan una sola vez.
type RefundInfo struct {
	Bank        string
	Account     string
	AccountType string
	Reason      string
}

// PendingPayment obligación de pago o devolución pendiente de liquidar.
// Amount siempre es positivo; la dirección la indica IsRefund.
type PendingPayment struct {
	ID             string
	ClientName     string
	PolicyNumber   string
	Amount         decimal.Decimal
	CarrierID      string
	PaymentDate    time.Time
	Type           string
	Status         string
	Source         string
	InstallmentNum *int
	RecurrenceID   *string
	GroupID        *string
	IsRefund       bool
	Refund         *RefundInfo
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Selectable indica si el pago puede entrar en un grupo nuevo.
func (p *PendingPayment) Selectable() bool {
	return p.Status == PaymentStatusPending && p.GroupID == nil
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recurrencia.
const (
	RecurrenceStatusActive    = "ACTIVA"
	RecurrenceStatusCancelled = "CANCELADA"
	RecurrenceStatusCompleted = "COMPLETADA"
)

// Frecuencias de cuota.
const (
	FrequencyMonthly    = "MENSUAL"
	FrequencySemiannual = "SEMESTRAL"
)

// Estados de una cuota del cronograma.
const (
	InstallmentPending = "PENDIENTE"
	InstallmentPaid    = "PAGADO"
	InstallmentOverdue = "VENCIDO"
)

// ScheduleEntry cuota del cronograma de una recurrencia.
type ScheduleEntry struct {
	Num       int       `json:"num"`
	DueDate   time.Time `json:"due_date"`
	Status    string    `json:"status"`
	PaymentID *string   `json:"payment_id,omitempty"`
}

// Materialized indica si la cuota ya generó un pago pendiente.
func (e ScheduleEntry) Materialized() bool {
	return e.PaymentID != nil || e.Status == InstallmentPaid
}

// Recurrence cronograma de cuotas que origina pagos pendientes futuros.
type Recurrence struct {
	ID                string
	ClientName        string
	PolicyNumber      string
	CarrierID         string
	TotalInstallments int
	Frequency         string
	InstallmentAmount decimal.Decimal
	StartDate         time.Time
	EndDate           time.Time
	NextDueDate       time.Time
	Status            string
	Schedule          []ScheduleEntry
	CancelledAt       *time.Time
	CancelledBy       *string
	CancelReason      *string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

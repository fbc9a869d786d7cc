package dto

import "github.com/shopspring/decimal"

// CreateRecurrenceRequest body para POST /api/recurrences.
type CreateRecurrenceRequest struct {
	ClientName        string          `json:"client_name" validate:"required,max=200"`
	PolicyNumber      string          `json:"policy_number" validate:"required,max=60"`
	CarrierID         string          `json:"carrier_id" validate:"required,uuid"`
	TotalInstallments int             `json:"total_installments" validate:"required,min=1,max=12"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	StartDate         string          `json:"start_date" validate:"required,datetime=2006-01-02"`
}

// UpdateRecurrenceRequest body para PUT /api/recurrences/:id/next-date.
type UpdateRecurrenceRequest struct {
	NewDate string `json:"new_date" validate:"required,datetime=2006-01-02"`
	ApplyTo string `json:"apply_to" validate:"required,oneof=only_this all_future"`
}

// CancelRecurrenceRequest body para POST /api/recurrences/:id/cancel.
type CancelRecurrenceRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ScheduleEntryResponse cuota del cronograma.
type ScheduleEntryResponse struct {
	Num       int     `json:"num"`
	DueDate   string  `json:"due_date"`
	Status    string  `json:"status"`
	PaymentID *string `json:"payment_id,omitempty"`
}

// RecurrenceResponse recurrencia con cronograma.
type RecurrenceResponse struct {
	ID                string                  `json:"id"`
	ClientName        string                  `json:"client_name"`
	PolicyNumber      string                  `json:"policy_number"`
	CarrierID         string                  `json:"carrier_id"`
	TotalInstallments int                     `json:"total_installments"`
	Frequency         string                  `json:"frequency"`
	InstallmentAmount decimal.Decimal         `json:"installment_amount"`
	StartDate         string                  `json:"start_date"`
	EndDate           string                  `json:"end_date"`
	NextDueDate       string                  `json:"next_due_date"`
	Status            string                  `json:"status"`
	CancelReason      *string                 `json:"cancel_reason,omitempty"`
	Schedule          []ScheduleEntryResponse `json:"schedule"`
	Created           *bool                   `json:"created,omitempty"`
}

// MaterializeResponse resultado de la generación manual de cuotas.
type MaterializeResponse struct {
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

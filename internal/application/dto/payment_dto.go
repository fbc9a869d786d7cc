package dto

import "github.com/shopspring/decimal"

// CreatePendingRequest body para POST /api/payments.
type CreatePendingRequest struct {
	ClientName     string          `json:"client_name" validate:"required,max=200"`
	PolicyNumber   string          `json:"policy_number" validate:"required,max=60"`
	CarrierID      string          `json:"carrier_id" validate:"required,uuid"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    string          `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Type           string          `json:"type" validate:"omitempty,oneof=PAGO_ASEGURADORA REFUND_TO_CLIENT"`
	InstallmentNum *int            `json:"installment_num" validate:"omitempty,min=1,max=12"`
	Notes          string          `json:"notes" validate:"max=500"`
}

// MarkRefundRequest body para POST /api/payments/:id/refund.
type MarkRefundRequest struct {
	Bank        string `json:"refund_bank" validate:"required"`
	Account     string `json:"refund_account" validate:"required"`
	AccountType string `json:"refund_account_type" validate:"required,oneof=AHORROS CORRIENTE"`
	Reason      string `json:"refund_reason" validate:"max=500"`
}

// PaymentListQuery filtros de GET /api/payments.
type PaymentListQuery struct {
	PageRequest
	Status    string `query:"status" validate:"omitempty,oneof=PENDIENTE_CONFIRMACION PENDIENTE AGRUPADO PAGADO"`
	CarrierID string `query:"carrier_id" validate:"omitempty,uuid"`
	Refund    string `query:"refund" validate:"omitempty,oneof=true false"`
	Search    string `query:"search"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// RefundResponse datos bancarios de una devolución.
type RefundResponse struct {
	Bank        string `json:"bank"`
	Account     string `json:"account"`
	AccountType string `json:"account_type"`
	Reason      string `json:"reason,omitempty"`
}

// PaymentResponse pago pendiente.
type PaymentResponse struct {
	ID             string          `json:"id"`
	ClientName     string          `json:"client_name"`
	PolicyNumber   string          `json:"policy_number"`
	CarrierID      string          `json:"carrier_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    string          `json:"payment_date"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Source         string          `json:"source"`
	InstallmentNum *int            `json:"installment_num,omitempty"`
	RecurrenceID   *string         `json:"recurrence_id,omitempty"`
	GroupID        *string         `json:"group_id,omitempty"`
	IsRefund       bool            `json:"is_refund"`
	Refund         *RefundResponse `json:"refund,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// CreatePendingResponse id del pago y si fue creado o ya existía.
type CreatePendingResponse struct {
	PaymentResponse
	Created bool `json:"created"`
}

// PaymentListResponse listado con resumen por estado.
type PaymentListResponse struct {
	Items   []PaymentResponse `json:"items"`
	Summary map[string]int    `json:"summary"`
	Page    PageResponse      `json:"page"`
}

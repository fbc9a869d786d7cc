package dto

import "github.com/shopspring/decimal"

// CreateGroupRequest body para POST /api/groups.
type CreateGroupRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// GroupItemRequest pago incluido en la confirmación.
type GroupItemRequest struct {
	PendingPaymentID string          `json:"pending_payment_id" validate:"required,uuid"`
	CarrierID        string          `json:"carrier_id"`
	AmountApplied    decimal.Decimal `json:"amount_applied"`
}

// GroupReferenceRequest monto tomado de una transferencia.
type GroupReferenceRequest struct {
	BankTransferID string          `json:"bank_transfer_id" validate:"required,uuid"`
	AmountUsed     decimal.Decimal `json:"amount_used"`
}

// ConfirmGroupRequest body para POST /api/groups/:id/confirm.
type ConfirmGroupRequest struct {
	Items      []GroupItemRequest      `json:"items" validate:"required,min=1,dive"`
	References []GroupReferenceRequest `json:"references" validate:"required,min=1,dive"`
}

// ReleaseGroupRequest body opcional para POST /api/groups/:id/release.
type ReleaseGroupRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// GroupListQuery filtros de GET /api/groups.
type GroupListQuery struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=DRAFT CONFIRMED POSTED DISCARDED"`
}

// GroupItemResponse ítem de grupo.
type GroupItemResponse struct {
	PendingPaymentID string          `json:"pending_payment_id"`
	CarrierID        string          `json:"carrier_id"`
	AmountApplied    decimal.Decimal `json:"amount_applied"`
}

// GroupReferenceResponse referencia bancaria de un grupo.
type GroupReferenceResponse struct {
	BankTransferID string          `json:"bank_transfer_id"`
	AmountUsed     decimal.Decimal `json:"amount_used"`
}

// GroupResponse grupo con su detalle.
type GroupResponse struct {
	ID          string                   `json:"id"`
	Status      string                   `json:"status"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	Notes       string                   `json:"notes,omitempty"`
	CreatedAt   string                   `json:"created_at"`
	ConfirmedAt *string                  `json:"confirmed_at,omitempty"`
	PostedAt    *string                  `json:"posted_at,omitempty"`
	Items       []GroupItemResponse      `json:"items,omitempty"`
	References  []GroupReferenceResponse `json:"references,omitempty"`
}
